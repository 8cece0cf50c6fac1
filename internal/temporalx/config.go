package temporalx

import (
	"github.com/yungbote/studentaid-backend/internal/platform/envutil"
)

type Config struct {
	Address   string
	Namespace string
	// TaskQueue serves the notification dispatch workflow.
	TaskQueue string

	ClientCertPath string
	ClientKeyPath  string
	ClientCAPath   string
}

func LoadConfig() Config {
	return Config{
		Address:   envutil.String("TEMPORAL_ADDRESS", ""),
		Namespace: envutil.String("TEMPORAL_NAMESPACE", "studentaid"),
		TaskQueue: envutil.String("TEMPORAL_TASK_QUEUE", "studentaid-notifications"),

		ClientCertPath: envutil.String("TEMPORAL_CLIENT_CERT_PATH", ""),
		ClientKeyPath:  envutil.String("TEMPORAL_CLIENT_KEY_PATH", ""),
		ClientCAPath:   envutil.String("TEMPORAL_CLIENT_CA_PATH", ""),
	}
}
