package commands

import (
	"fmt"
	"os"
	"strings"
	"tenttiarkisto-uploader/internal/components/telemetry"
	"tenttiarkisto-uploader/lib/configutil"
)

const defaultConfigName = "exam-upload.json5"

type Config struct {
	BaseUrl  string `json:"base_url"`
	TodoDir  string `json:"todo_dir"`
	DoneDir  string `json:"done_dir"`
	Username string `json:"username"`
	Password string `json:"password"`
	// course code -> course id, used when the archive offers the same code more than once
	CourseOverrides   map[string]string `json:"course_overrides"`
	Markup            string            `json:"markup"`
	RequestsPerSecond float64           `json:"requests_per_second"`
	TimeoutSeconds    int               `json:"timeout_seconds"`

	Telemetry telemetry.Config `json:"telemetry"`
}

var defaultConfig = Config{
	TodoDir:           "./todo",
	DoneDir:           "./done",
	Markup:            "form",
	RequestsPerSecond: 2,
	TimeoutSeconds:    30,
}

func loadConfig(path string, recursive bool) (Config, error) {
	var (
		c   Config
		err error
	)
	if recursive {
		c, err = configutil.ReadRecursively[Config](path)
	} else {
		c, err = configutil.ReadConfig[Config](path)
	}
	if os.IsNotExist(err) {
		return Config{}, fmt.Errorf("no config found at %s", path)
	}
	if err != nil {
		return Config{}, err
	}

	c, err = configutil.WithDefaults(c, defaultConfig)
	if err != nil {
		return Config{}, err
	}

	if username := os.Getenv("EXAM_UPLOAD_USERNAME"); username != "" {
		c.Username = username
	}
	if password := os.Getenv("EXAM_UPLOAD_PASSWORD"); password != "" {
		c.Password = password
	}

	overrides := make(map[string]string, len(c.CourseOverrides))
	for code, id := range c.CourseOverrides {
		overrides[strings.ToLower(code)] = id
	}
	c.CourseOverrides = overrides

	if c.BaseUrl == "" {
		return Config{}, fmt.Errorf("base_url is required")
	}
	return c, nil
}
