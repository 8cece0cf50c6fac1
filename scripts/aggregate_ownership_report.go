// Command aggregate_ownership_report walks internal/services and reports which service
// methods write lifecycle tables through repos instead of an aggregate.
//
//	go run ./scripts [-strict] [root]
//
// With -strict the command exits 1 when any lifecycle repo write is found.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type repoDep struct {
	Field     string `json:"field"`
	RepoType  string `json:"repo_type"`
	Area      string `json:"area"`
	Lifecycle bool   `json:"lifecycle"`
}

type methodReport struct {
	Service          string   `json:"service"`
	Method           string   `json:"method"`
	File             string   `json:"file"`
	Line             int      `json:"line"`
	RepoWrites       int      `json:"repo_writes"`
	RepoFieldsWritten []string `json:"repo_fields_written"`
	AggregateCalls   int      `json:"aggregate_calls"`
	AggregateOps     []string `json:"aggregate_ops"`
}

type ownershipReport struct {
	LifecycleRepoWriteCallsites int            `json:"lifecycle_repo_write_callsites"`
	AggregateOwnedCallsites     int            `json:"aggregate_owned_callsites"`
	ServicesWithLifecycleRepos  []string       `json:"services_with_lifecycle_repos"`
	RepoInventory               []repoDep      `json:"repo_inventory"`
	Violations                  []methodReport `json:"violations"`
	AggregateMethods            []methodReport `json:"aggregate_methods"`
	Methods                     []methodReport `json:"methods"`
}

type serviceDeps struct {
	Repos      map[string]repoDep
	Aggregates map[string]string
}

var repoWriteVerbs = []string{"Create", "Update", "Upsert", "Delete", "SoftDelete", "LockByID", "Next", "Mark"}

var aggregateOps = map[string]bool{
	"SaveDraft":                            true,
	"Submit":                               true,
	"Cancel":                               true,
	"SubmitChangeRequest":                  true,
	"CancelChangeRequest":                  true,
	"AssessChangeRequest":                  true,
	"SetOfferingForProgramInfoRequest":     true,
	"SetDeniedReasonForProgramInfoRequest": true,
	"ConfirmAssessment":                    true,
	"TransitionStatus":                     true,
	"SaveScholasticStanding":               true,
	"CreateApplicationOfferingChange":      true,
	"StudentRespondOfferingChange":         true,
	"AssessApplicationOfferingChange":      true,
	"RequestChange":                        true,
	"Resolve":                              true,
	"Delete":                               true,
}

func main() {
	strict := flag.Bool("strict", false, "exit 1 when a service writes lifecycle tables through a repo")
	flag.Parse()
	root := "."
	if flag.NArg() > 0 {
		root = flag.Arg(0)
	}

	dir := filepath.Join(root, "internal", "services")
	fset := token.NewFileSet()
	pkgs, err := parser.ParseDir(fset, dir, func(fi os.FileInfo) bool {
		name := fi.Name()
		return strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go")
	}, 0)
	if err != nil {
		exitf("parse %s: %v", dir, err)
	}
	pkg, ok := pkgs["services"]
	if !ok {
		exitf("services package not found in %s", dir)
	}

	deps := map[string]serviceDeps{}
	for _, f := range pkg.Files {
		collectDeps(f, deps)
	}
	var methods []methodReport
	for path, f := range pkg.Files {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		methods = append(methods, inspectMethods(fset, f, rel, deps)...)
	}

	report := summarize(deps, methods)
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		exitf("marshal report: %v", err)
	}
	fmt.Println(string(out))
	if *strict && report.LifecycleRepoWriteCallsites > 0 {
		os.Exit(1)
	}
}

func collectDeps(file *ast.File, out map[string]serviceDeps) {
	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok || st.Fields == nil {
				continue
			}
			sd := serviceDeps{Repos: map[string]repoDep{}, Aggregates: map[string]string{}}
			for _, field := range st.Fields.List {
				if len(field.Names) == 0 {
					continue
				}
				sel, ok := field.Type.(*ast.SelectorExpr)
				if !ok {
					continue
				}
				pkgIdent, ok := sel.X.(*ast.Ident)
				if !ok {
					continue
				}
				name := field.Names[0].Name
				typ := sel.Sel.Name
				switch pkgIdent.Name {
				case "repos":
					if !strings.HasSuffix(typ, "Repo") {
						continue
					}
					area, lifecycle := areaForRepo(typ)
					sd.Repos[name] = repoDep{Field: name, RepoType: typ, Area: area, Lifecycle: lifecycle}
				case "domainagg":
					if strings.HasSuffix(typ, "Aggregate") {
						sd.Aggregates[name] = typ
					}
				}
			}
			if len(sd.Repos) > 0 || len(sd.Aggregates) > 0 {
				out[ts.Name.Name] = sd
			}
		}
	}
}

func inspectMethods(fset *token.FileSet, file *ast.File, relFile string, deps map[string]serviceDeps) []methodReport {
	var out []methodReport
	for _, decl := range file.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Recv == nil || fd.Body == nil || len(fd.Recv.List) == 0 {
			continue
		}
		recvName, recvType := receiver(fd.Recv.List[0])
		sd, ok := deps[recvType]
		if !ok || recvName == "" {
			continue
		}

		repoWrites := 0
		repoFields := map[string]bool{}
		aggCalls := 0
		aggMethods := map[string]bool{}
		ast.Inspect(fd.Body, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			fn, ok := call.Fun.(*ast.SelectorExpr)
			if !ok {
				return true
			}
			target, ok := fn.X.(*ast.SelectorExpr)
			if !ok {
				return true
			}
			base, ok := target.X.(*ast.Ident)
			if !ok || base.Name != recvName {
				return true
			}
			field, method := target.Sel.Name, fn.Sel.Name
			if rd, ok := sd.Repos[field]; ok && rd.Lifecycle && isRepoWrite(method) {
				repoWrites++
				repoFields[field] = true
				return true
			}
			if _, ok := sd.Aggregates[field]; ok && aggregateOps[method] {
				aggCalls++
				aggMethods[method] = true
			}
			return true
		})

		out = append(out, methodReport{
			Service:          recvType,
			Method:           fd.Name.Name,
			File:             filepath.ToSlash(relFile),
			Line:             fset.Position(fd.Pos()).Line,
			RepoWrites:       repoWrites,
			RepoFieldsWritten: sortedKeys(repoFields),
			AggregateCalls:   aggCalls,
			AggregateOps:     sortedKeys(aggMethods),
		})
	}
	return out
}

func summarize(deps map[string]serviceDeps, methods []methodReport) ownershipReport {
	sort.Slice(methods, func(i, j int) bool {
		if methods[i].File == methods[j].File {
			return methods[i].Line < methods[j].Line
		}
		return methods[i].File < methods[j].File
	})
	r := ownershipReport{Methods: methods}

	services := map[string]bool{}
	inventory := map[string]repoDep{}
	for name, sd := range deps {
		for _, rd := range sd.Repos {
			inventory[name+"."+rd.Field] = rd
			if rd.Lifecycle {
				services[name] = true
			}
		}
	}
	for _, m := range methods {
		if m.RepoWrites > 0 {
			r.LifecycleRepoWriteCallsites += m.RepoWrites
			r.Violations = append(r.Violations, m)
		}
		if m.AggregateCalls > 0 {
			r.AggregateOwnedCallsites += m.AggregateCalls
			r.AggregateMethods = append(r.AggregateMethods, m)
		}
	}
	r.ServicesWithLifecycleRepos = sortedKeys(services)

	keys := make([]string, 0, len(inventory))
	for k := range inventory {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		r.RepoInventory = append(r.RepoInventory, inventory[k])
	}
	return r
}

func isRepoWrite(method string) bool {
	for _, verb := range repoWriteVerbs {
		if strings.HasPrefix(method, verb) {
			return true
		}
	}
	return false
}

func receiver(field *ast.Field) (string, string) {
	if field == nil || len(field.Names) == 0 {
		return "", ""
	}
	name := field.Names[0].Name
	switch t := field.Type.(type) {
	case *ast.StarExpr:
		if id, ok := t.X.(*ast.Ident); ok {
			return name, id.Name
		}
	case *ast.Ident:
		return name, t.Name
	}
	return "", ""
}

// areaForRepo reports the owning area of a repo type. Notification, note and sequence
// bookkeeping is not lifecycle state and may be written outside an aggregate.
func areaForRepo(repoType string) (string, bool) {
	switch {
	case strings.HasPrefix(repoType, "Application"),
		strings.HasPrefix(repoType, "Assessment"),
		strings.HasPrefix(repoType, "OfferingChangeRequest"),
		strings.HasPrefix(repoType, "ScholasticStanding"),
		strings.HasPrefix(repoType, "ProgramYear"):
		return "Applications", true
	case strings.HasPrefix(repoType, "StudentRestriction"),
		strings.HasPrefix(repoType, "Restriction"),
		strings.HasPrefix(repoType, "Student"):
		return "Students", true
	case strings.HasPrefix(repoType, "Offering"),
		strings.HasPrefix(repoType, "Location"),
		strings.HasPrefix(repoType, "Program"):
		return "Institutions", true
	case strings.HasPrefix(repoType, "Notification"),
		strings.HasPrefix(repoType, "Note"),
		strings.HasPrefix(repoType, "Sequence"):
		return "Common", false
	default:
		return "Other", false
	}
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
