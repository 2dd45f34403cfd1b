package browser

import (
	"context"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"internscout/internal/logger"
)

const (
	loginPath     = "/login/student"
	dashboardPath = "/student/dashboard"

	fieldWaitMs     = 3000
	indicatorWaitMs = 5000

	submitSettle = 3 * time.Second
	verifySettle = 2 * time.Second
	logoutSettle = 2 * time.Second
)

// Selector candidates are ordered most-specific first. The site reshuffles
// its markup often enough that every lookup walks a list instead of trusting
// a single selector.
var (
	emailSelectors = []string{
		`input[type="email"]`,
		`input[name="email"]`,
		`#email`,
		`input[placeholder*="email" i]`,
		`.email-input input`,
	}
	passwordSelectors = []string{
		`input[type="password"]`,
		`input[name="password"]`,
		`#password`,
		`input[placeholder*="password" i]`,
		`.password-input input`,
	}
	submitSelectors = []string{
		`button[type="submit"]`,
		`.login-submit`,
		`button:has-text("Login")`,
		`input[type="submit"]`,
		`.btn-primary`,
		`form button`,
	}
	successIndicators = []string{
		`.dashboard`,
		`.student-dashboard`,
		`.profile-container`,
		`h1:has-text("Dashboard")`,
		`.user-menu`,
		`[data-testid="profile"]`,
	}
	errorIndicators = []string{
		`.error-message`,
		`.alert-danger`,
		`.login-error`,
		`[class*="error"]`,
	}
	logoutSelectors = []string{
		`a:has-text("Logout")`,
		`.logout`,
		`[href*="logout"]`,
	}
)

// Compound indicators for the cheap already-logged-in probe.
const (
	profileIndicator   = `.profile-container, .user-menu, [data-testid="profile"]`
	dashboardIndicator = `.dashboard, .student-dashboard, h1:has-text("Dashboard")`
)

// Driver is the slice of the browser session the authenticator needs.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	Fill(selector, value string) bool
	Click(selector string) bool
	Press(selector, key string) bool
	WaitVisible(selector string, timeoutMs float64) bool
	Text(selector string) (string, bool)
	URL() string
	SaveSession() bool
	Screenshot(name string)
	Pause(ctx context.Context, d time.Duration) error
}

// Authenticator drives the login form and decides whether a session is
// authenticated. Failures are results, not errors: callers get a reason
// string and decide what to do with it.
type Authenticator struct {
	driver   Driver
	baseURL  string
	email    string
	password string
	log      *log.Entry
}

func NewAuthenticator(driver Driver, baseURL, email, password, traceID string) *Authenticator {
	return &Authenticator{
		driver:   driver,
		baseURL:  strings.TrimRight(baseURL, "/"),
		email:    email,
		password: password,
		log:      logger.WithTrace(traceID),
	}
}

// Login walks the login form: fill email, fill password, submit, then verify.
// Each step tries its selector candidates in order and gives up only when the
// whole list is exhausted.
func (a *Authenticator) Login(ctx context.Context) (bool, string) {
	a.log.Info("starting login")

	if err := a.driver.Navigate(ctx, a.baseURL+loginPath); err != nil {
		a.driver.Screenshot("login_error")
		a.log.WithField(logger.ErrorTypeField, logger.ErrorTypeAuth).
			Errorf("login navigation failed: %v", err)
		return false, "login error: " + err.Error()
	}
	a.driver.Screenshot("before_login")

	if _, ok := a.fillFirst(emailSelectors, a.email); !ok {
		return a.failed("could not find or fill email field")
	}
	passwordSelector, ok := a.fillFirst(passwordSelectors, a.password)
	if !ok {
		return a.failed("could not find or fill password field")
	}
	if !a.submit(passwordSelector) {
		return a.failed("could not submit login form")
	}

	if err := a.driver.Pause(ctx, submitSettle); err != nil {
		return false, "login error: " + err.Error()
	}

	verified, reason := a.Verify(ctx)
	if !verified {
		return a.failed(reason)
	}

	if !a.driver.SaveSession() {
		a.log.Warn("login succeeded but session state was not saved")
	}
	a.log.Info("login successful")
	return true, "login successful"
}

// Verify decides the authentication state from the page alone. Order
// matters: a positive indicator wins, a login URL loses, a visible error
// message loses, and anything else is treated as not logged in.
func (a *Authenticator) Verify(ctx context.Context) (bool, string) {
	if err := a.driver.Pause(ctx, verifySettle); err != nil {
		return false, "verify interrupted: " + err.Error()
	}

	currentURL := a.driver.URL()
	a.log.Debugf("verifying login state at %s", currentURL)

	for _, indicator := range successIndicators {
		if a.driver.WaitVisible(indicator, indicatorWaitMs) {
			a.log.Debugf("login verified with indicator: %s", indicator)
			return true, "login verified"
		}
	}

	if strings.Contains(strings.ToLower(currentURL), "login") {
		return false, "still on login page"
	}

	for _, selector := range errorIndicators {
		if text, found := a.driver.Text(selector); found {
			a.log.Warnf("login error detected: %s", text)
			return false, "login error displayed: " + text
		}
	}

	return false, "could not verify login state"
}

// IsLoggedIn probes the dashboard to see whether a restored session is still
// authenticated, so a run can skip the login form entirely.
func (a *Authenticator) IsLoggedIn(ctx context.Context) bool {
	a.log.Info("checking login status")

	if err := a.driver.Navigate(ctx, a.baseURL+dashboardPath); err != nil {
		a.log.Warnf("login status check failed: %v", err)
		return false
	}

	if a.driver.WaitVisible(profileIndicator, indicatorWaitMs) ||
		a.driver.WaitVisible(dashboardIndicator, indicatorWaitMs) {
		a.log.Info("already logged in")
		return true
	}

	if strings.Contains(strings.ToLower(a.driver.URL()), "login") {
		a.log.Info("not logged in, redirected to login page")
	}
	return false
}

// Logout clicks through the logout candidates and saves the now-anonymous
// state so a later restore does not resurrect the authenticated session.
func (a *Authenticator) Logout(ctx context.Context) bool {
	a.log.Info("logging out")

	for _, selector := range logoutSelectors {
		if !a.driver.WaitVisible(selector, fieldWaitMs) {
			continue
		}
		if !a.driver.Click(selector) {
			continue
		}
		if err := a.driver.Pause(ctx, logoutSettle); err != nil {
			return false
		}
		a.driver.SaveSession()
		a.log.Info("logout successful")
		return true
	}
	return false
}

func (a *Authenticator) fillFirst(selectors []string, value string) (string, bool) {
	for _, selector := range selectors {
		if !a.driver.WaitVisible(selector, fieldWaitMs) {
			continue
		}
		if a.driver.Fill(selector, value) {
			a.log.Debugf("field filled using selector: %s", selector)
			return selector, true
		}
	}
	return "", false
}

func (a *Authenticator) submit(passwordSelector string) bool {
	for _, selector := range submitSelectors {
		if !a.driver.WaitVisible(selector, fieldWaitMs) {
			continue
		}
		if a.driver.Click(selector) {
			a.log.Debugf("form submitted using selector: %s", selector)
			return true
		}
	}

	// Last resort: submit the form from the password field itself.
	if a.driver.Press(passwordSelector, "Enter") {
		a.log.Debug("form submitted using Enter key")
		return true
	}

	a.log.WithField(logger.ErrorTypeField, logger.ErrorTypeAuth).
		Error("could not submit login form")
	return false
}

func (a *Authenticator) failed(reason string) (bool, string) {
	a.driver.Screenshot("login_failed")
	a.log.Warnf("login failed: %s", reason)
	return false, reason
}
