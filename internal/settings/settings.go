package settings

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

func NewSettings() *AppSettings {
	settings := AppSettings{
		SQLiteDatabase: getEnvOrDefault("COVREP_DB_PATH", "file:.///coverage_reports.sqlite"),
		LogDir:         getEnvOrDefault("COVREP_LOG_DIR", "./log"),
		ProjectName:    getEnvOrDefault("COVREP_PROJECT_NAME", "CFME"),
		CoverageDir:    getEnvOrDefault("COVREP_COVERAGE_DIR", "/coverage"),
		ScannerDir:     getEnvOrDefault("COVREP_SCANNER_DIR", "/root/scanner"),
		CommandTimeout: getEnvDuration("COVREP_COMMAND_TIMEOUT", 5*time.Minute),
		MergeTimeout:   getEnvDuration("COVREP_MERGE_TIMEOUT", time.Hour),
		InsecureSkipVerify: getEnvOrDefault(
			"COVREP_INSECURE_SKIP_VERIFY", "true") == "true",
		Sonar: SonarSettings{
			URL:         os.Getenv("COVREP_SONAR_URL"),
			ScannerURL:  os.Getenv("COVREP_SONAR_SCANNER_URL"),
			ScanTimeout: getEnvDuration("COVREP_SCAN_TIMEOUT", 10*time.Minute),
		},
		Jenkins: JenkinsCredentials{
			User:  os.Getenv("COVREP_JENKINS_USER"),
			Token: os.Getenv("COVREP_JENKINS_TOKEN"),
		},
		Appliance: ApplianceSettings{
			SSHUser:     getEnvOrDefault("COVREP_SSH_USER", "root"),
			SSHPassword: os.Getenv("COVREP_SSH_PASSWORD"),
			SSHKeyPath:  os.Getenv("COVREP_SSH_KEY_PATH"),
		},
	}
	return &settings
}

func getEnvOrDefault(key, defaultValue string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return time.Duration(seconds) * time.Second
}

type AppSettings struct {
	SQLiteDatabase string
	// Local directory where the merged coverage report is pulled and unpacked.
	LogDir      string
	ProjectName string

	// Directory on the appliance where coverage archives are extracted.
	CoverageDir string
	// Installation directory of sonar-scanner on the appliance.
	ScannerDir string

	CommandTimeout time.Duration
	MergeTimeout   time.Duration

	// Skip TLS verification against Jenkins (internal CA).
	InsecureSkipVerify bool

	Sonar     SonarSettings
	Jenkins   JenkinsCredentials
	Appliance ApplianceSettings
}

type SonarSettings struct {
	URL         string
	ScannerURL  string
	ScanTimeout time.Duration
}

type JenkinsCredentials struct {
	User  string
	Token string
}

type ApplianceSettings struct {
	SSHUser     string
	SSHPassword string
	SSHKeyPath  string
}

// fileConfig is the YAML config file schema. Sections mirror the QE
// environment files: a sonarqube block and a credentials block with the
// jenkins_app entry.
type fileConfig struct {
	Sonarqube struct {
		URL         string `yaml:"url"`
		ScannerURL  string `yaml:"scanner_url"`
		ScanTimeout int    `yaml:"scan_timeout"`
	} `yaml:"sonarqube"`
	Credentials struct {
		JenkinsApp struct {
			User  string `yaml:"user"`
			Token string `yaml:"token"`
		} `yaml:"jenkins_app"`
	} `yaml:"credentials"`
	Appliance struct {
		SSHUser     string `yaml:"ssh_user"`
		SSHPassword string `yaml:"ssh_password"`
		SSHKeyPath  string `yaml:"ssh_key_path"`
	} `yaml:"appliance"`
}

// LoadConfigFile overlays values from a YAML config file. Values already set
// through the environment win over the file.
func (as *AppSettings) LoadConfigFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	fc := new(fileConfig)
	if err := yaml.Unmarshal(data, fc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if as.Sonar.URL == "" {
		as.Sonar.URL = fc.Sonarqube.URL
	}
	if as.Sonar.ScannerURL == "" {
		as.Sonar.ScannerURL = fc.Sonarqube.ScannerURL
	}
	if fc.Sonarqube.ScanTimeout > 0 && os.Getenv("COVREP_SCAN_TIMEOUT") == "" {
		as.Sonar.ScanTimeout = time.Duration(fc.Sonarqube.ScanTimeout) * time.Second
	}
	if as.Jenkins.User == "" {
		as.Jenkins.User = fc.Credentials.JenkinsApp.User
	}
	if as.Jenkins.Token == "" {
		as.Jenkins.Token = fc.Credentials.JenkinsApp.Token
	}
	if fc.Appliance.SSHUser != "" && os.Getenv("COVREP_SSH_USER") == "" {
		as.Appliance.SSHUser = fc.Appliance.SSHUser
	}
	if as.Appliance.SSHPassword == "" {
		as.Appliance.SSHPassword = fc.Appliance.SSHPassword
	}
	if as.Appliance.SSHKeyPath == "" {
		as.Appliance.SSHKeyPath = fc.Appliance.SSHKeyPath
	}
	return nil
}

func (as *AppSettings) SQLiteDbString(readonly bool) string {
	params := make(url.Values)
	params.Add("_journal_mode", "WAL")
	params.Add("_busy_timeout", "5000")
	params.Add("_synchronous", "NORMAL")
	params.Add("_foreign_keys", "ON")
	if readonly {
		params.Add("mode", "ro")
	} else {
		params.Add("_txlock", "IMMEDIATE")
		params.Add("mode", "rwc")
	}

	return as.SQLiteDatabase + "?" + params.Encode()
}

// ReadDotenv loads KEY=VALUE pairs from a dotenv file into the environment.
// A missing file is not an error.
func ReadDotenv(path string) error {
	re := regexp.MustCompile(`^[^0-9][A-Z0-9_]+=.+$`)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening dotenv: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) > 0 && line[0] != '#' && re.Match(line) {
			split := strings.SplitN(string(line), "=", 2)
			name := strings.TrimSpace(split[0])
			value := strings.TrimSpace(split[1])
			value = strings.Trim(value, `"`)
			os.Setenv(name, value)
		}
	}
	return scanner.Err()
}
