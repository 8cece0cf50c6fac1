package rules

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/studentaid-backend/internal/platform/logger"
)

const rulesEnv = "AID_RULES_YAML"

//go:embed rules.yaml
var rulesFS embed.FS

type StudyPeriod struct {
	MaxBreakDays                  int `yaml:"max_break_days"`
	MinBreakDays                  int `yaml:"min_break_days"`
	CombinedBreakThresholdPercent int `yaml:"combined_break_threshold_percent"`
	MaxStudyPeriodDays            int `yaml:"max_study_period_days"`
	MinFundedWeeksFullTime        int `yaml:"min_funded_weeks_full_time"`
}

type Restrictions struct {
	SIN                        string   `yaml:"sin"`
	StepUp                     string   `yaml:"step_up"`
	StepUpEscalated            string   `yaml:"step_up_escalated"`
	Withdrawal                 string   `yaml:"withdrawal"`
	PartTimeBundle             []string `yaml:"part_time_bundle"`
	UnsuccessfulWeeksThreshold int      `yaml:"unsuccessful_weeks_threshold"`
}

type Applications struct {
	NumberLength              int `yaml:"number_length"`
	EditNotificationThreshold int `yaml:"edit_notification_threshold"`
}

// Rules holds the tunable constants of the lifecycle engine.
type Rules struct {
	StudyPeriod  StudyPeriod  `yaml:"study_period"`
	Restrictions Restrictions `yaml:"restrictions"`
	Applications Applications `yaml:"applications"`
}

// Default returns the embedded rules. It panics only if the embedded file is broken.
func Default() Rules {
	raw, err := rulesFS.ReadFile("rules.yaml")
	if err != nil {
		panic(fmt.Sprintf("rules: read embedded rules: %v", err))
	}
	r, err := Parse(raw)
	if err != nil {
		panic(fmt.Sprintf("rules: parse embedded rules: %v", err))
	}
	return r
}

// Load reads the override file named by AID_RULES_YAML, falling back to the embedded rules.
func Load(log *logger.Logger) Rules {
	path := strings.TrimSpace(os.Getenv(rulesEnv))
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if log != nil {
			log.Warn("aid rules override unreadable; using embedded rules", "path", path, "error", err)
		}
		return Default()
	}
	r, err := Parse(raw)
	if err != nil {
		if log != nil {
			log.Warn("aid rules override invalid; using embedded rules", "path", path, "error", err)
		}
		return Default()
	}
	return r
}

// Parse decodes and validates a rules document.
func Parse(raw []byte) (Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(raw, &r); err != nil {
		return Rules{}, err
	}
	if err := r.Validate(); err != nil {
		return Rules{}, err
	}
	return r, nil
}

func (r Rules) Validate() error {
	var errs []error
	sp := r.StudyPeriod
	if sp.MaxBreakDays <= 0 {
		errs = append(errs, errors.New("study_period.max_break_days must be > 0"))
	}
	if sp.CombinedBreakThresholdPercent < 0 || sp.CombinedBreakThresholdPercent > 100 {
		errs = append(errs, errors.New("study_period.combined_break_threshold_percent must be within 0..100"))
	}
	if sp.MaxStudyPeriodDays <= 0 {
		errs = append(errs, errors.New("study_period.max_study_period_days must be > 0"))
	}
	rs := r.Restrictions
	if rs.SIN == "" || rs.StepUp == "" || rs.StepUpEscalated == "" || rs.Withdrawal == "" {
		errs = append(errs, errors.New("restrictions codes must be set"))
	}
	if len(rs.PartTimeBundle) == 0 {
		errs = append(errs, errors.New("restrictions.part_time_bundle must not be empty"))
	}
	if rs.UnsuccessfulWeeksThreshold <= 0 {
		errs = append(errs, errors.New("restrictions.unsuccessful_weeks_threshold must be > 0"))
	}
	if r.Applications.NumberLength < 6 {
		errs = append(errs, errors.New("applications.number_length must be >= 6"))
	}
	if r.Applications.EditNotificationThreshold < 1 {
		errs = append(errs, errors.New("applications.edit_notification_threshold must be >= 1"))
	}
	return errors.Join(errs...)
}
