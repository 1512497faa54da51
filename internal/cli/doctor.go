package cli

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/ticktui/ticktui/internal/callback"
	"github.com/ticktui/ticktui/internal/config"
	"github.com/ticktui/ticktui/internal/logging"
	"github.com/ticktui/ticktui/internal/oauth"
	"github.com/ticktui/ticktui/internal/store"
)

// doctorCmd represents the doctor command
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration and credential issues",
	Long: `Perform a diagnostic of the local ticktui setup.

This command checks:
- System information (OS, Go version)
- Configuration file and environment
- The cached credential
- The redirect listener address, in listener mode

Example:
  ticktui doctor`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	RootCmd.AddCommand(doctorCmd)
}

// DoctorReport represents the complete diagnostic report
type DoctorReport struct {
	Timestamp       time.Time     `json:"timestamp"`
	Checks          []DoctorCheck `json:"checks"`
	Recommendations []string      `json:"recommendations"`
}

// DoctorCheck represents a single diagnostic check
type DoctorCheck struct {
	Category    string `json:"category"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	Message     string `json:"message"`
	Remediation string `json:"remediation,omitempty"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	report := DoctorReport{
		Timestamp: time.Now().UTC(),
		Checks:    collectSystemInfo(),
	}

	cfg, err := loadConfig()
	if err != nil {
		report.Checks = append(report.Checks, DoctorCheck{
			Category:    "Configuration",
			Name:        "Config Load",
			Status:      "FAIL",
			Message:     err.Error(),
			Remediation: "Set CLIENT_ID, CLIENT_SECRET and REDIRECT_URL (or a config.yaml), or pass --dev",
		})
	} else {
		report.Checks = append(report.Checks, checkConfiguration(cfg)...)
		report.Checks = append(report.Checks, checkCredential(cmd.Context(), cfg))
		if cfg.Callback.Mode == "listener" {
			report.Checks = append(report.Checks, checkListenerAddress(cfg.OAuth.RedirectURL))
		}
	}

	report.Recommendations = generateRecommendations(report.Checks)

	if globalFlags.JSON {
		return outputJSON(cmd.OutOrStdout(), report)
	}
	return outputDoctorReport(cmd.OutOrStdout(), report)
}

func collectSystemInfo() []DoctorCheck {
	wd, err := os.Getwd()
	if err != nil {
		wd = "unknown"
	}
	return []DoctorCheck{
		{Category: "System", Name: "Operating System", Status: "OK", Message: fmt.Sprintf("OS: %s (%s)", runtime.GOOS, runtime.GOARCH)},
		{Category: "System", Name: "Go Version", Status: "OK", Message: fmt.Sprintf("Go: %s", runtime.Version())},
		{Category: "System", Name: "Working Directory", Status: "OK", Message: fmt.Sprintf("Directory: %s", wd)},
	}
}

func checkConfiguration(cfg *config.Config) []DoctorCheck {
	checks := []DoctorCheck{{
		Category: "Configuration",
		Name:     "Config Load",
		Status:   "OK",
		Message:  fmt.Sprintf("Provider %s, API %s", cfg.OAuth.Provider, cfg.API.BaseURL),
	}}

	if cfg.Dev {
		checks = append(checks, DoctorCheck{
			Category: "Configuration",
			Name:     "Dev Mode",
			Status:   "WARN",
			Message:  "Dev mode is on; every command serves synthetic data",
		})
	}

	if !cfg.OAuth.StrictState {
		checks = append(checks, DoctorCheck{
			Category:    "Configuration",
			Name:        "State Validation",
			Status:      "WARN",
			Message:     "strict_state is off; a forged redirect would be accepted",
			Remediation: "Set oauth.strict_state: true",
		})
	}

	if cfg.OAuth.RedirectURL != "" {
		if u, err := url.Parse(cfg.OAuth.RedirectURL); err == nil && u.Scheme == "http" && !isLoopback(u.Hostname()) {
			checks = append(checks, DoctorCheck{
				Category:    "Configuration",
				Name:        "Redirect URL",
				Status:      "WARN",
				Message:     fmt.Sprintf("Redirect URL %s is plain http on a non-loopback host", cfg.OAuth.RedirectURL),
				Remediation: "Use https or a localhost redirect URL",
			})
		}
	}
	return checks
}

func checkCredential(ctx context.Context, cfg *config.Config) DoctorCheck {
	check := DoctorCheck{Category: "Credential", Name: "Cached Credential"}
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(cfg.Credentials, logging.Discard())
	if err != nil {
		check.Status = "FAIL"
		check.Message = fmt.Sprintf("Credential store (%s) cannot be opened: %v", cfg.Credentials.Backend, err)
		check.Remediation = "Check credentials.path and its directory permissions"
		return check
	}
	defer st.Close()

	status := oauth.NewEngine(cfg.OAuth, st, nil).Status(ctx)
	switch {
	case !status.Present:
		check.Status = "WARN"
		check.Message = fmt.Sprintf("No credential in %s store", cfg.Credentials.Backend)
		check.Remediation = "Run 'ticktui login'"
	case status.Valid:
		check.Status = "OK"
		check.Message = fmt.Sprintf("Valid until %s", status.ExpiresAt.Format(time.RFC3339))
	case status.HasRefreshToken:
		check.Status = "OK"
		check.Message = "Expired, will be refreshed on next use"
	default:
		check.Status = "WARN"
		check.Message = "Expired and has no refresh token"
		check.Remediation = "Run 'ticktui login'"
	}
	return check
}

func checkListenerAddress(redirectURL string) DoctorCheck {
	check := DoctorCheck{Category: "Callback", Name: "Listener Address"}
	u, err := url.Parse(redirectURL)
	if err != nil || u.Host == "" {
		check.Status = "FAIL"
		check.Message = fmt.Sprintf("Redirect URL %q has no host", redirectURL)
		return check
	}

	addr := callback.ListenAddr(u)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		check.Status = "FAIL"
		check.Message = fmt.Sprintf("Cannot listen on %s: %v", addr, err)
		check.Remediation = "Free the port or switch callback.mode to prompt"
		return check
	}
	_ = ln.Close()

	check.Status = "OK"
	check.Message = fmt.Sprintf("%s is available", addr)
	return check
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func generateRecommendations(checks []DoctorCheck) []string {
	recommendations := []string{}

	failCount := 0
	warnCount := 0

	for _, check := range checks {
		switch check.Status {
		case "FAIL":
			failCount++
		case "WARN":
			warnCount++
		}
		if check.Status != "OK" && check.Remediation != "" {
			recommendations = append(recommendations, fmt.Sprintf("[%s] %s: %s", check.Category, check.Name, check.Remediation))
		}
	}

	if failCount == 0 && warnCount == 0 {
		recommendations = append(recommendations, "Everything looks fine.")
	} else if failCount > 0 {
		recommendations = append(recommendations, fmt.Sprintf("Found %d critical issue(s) and %d warning(s). Please address the critical issues first.", failCount, warnCount))
	}

	return recommendations
}

func outputDoctorReport(out io.Writer, report DoctorReport) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "=== ticktui Doctor Report ===")
	fmt.Fprintf(w, "Generated: %s\n", report.Timestamp.Format(time.RFC3339))

	category := ""
	for _, check := range report.Checks {
		if check.Category != category {
			category = check.Category
			fmt.Fprintf(w, "\n--- %s ---\n", category)
		}
		statusIcon := "✓"
		if check.Status == "FAIL" {
			statusIcon = "✗"
		} else if check.Status == "WARN" {
			statusIcon = "!"
		}
		fmt.Fprintf(w, "%s %s:\t%s\n", statusIcon, check.Name, check.Message)
	}

	fmt.Fprintln(w, "\n--- Recommendations ---")
	for _, rec := range report.Recommendations {
		fmt.Fprintf(w, "• %s\n", rec)
	}

	return w.Flush()
}
