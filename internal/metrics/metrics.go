// Package metrics collects Prometheus counters for authentication outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels shared by the sign-in and OTP counters.
const (
	ResultSuccess        = "success"
	ResultInvalid        = "invalid"
	ResultAccountBlocked = "account_blocked"
	ResultNotFound       = "not_found"
	ResultError          = "error"
)

// Session rejection reasons.
const (
	ReasonInvalidToken   = "invalid_token"
	ReasonRevoked        = "revoked"
	ReasonUnknownAccount = "unknown_account"
	ReasonAccountBlocked = "account_blocked"
)

// AuthRecorder is what the services record auth outcomes through.
type AuthRecorder interface {
	RecordSignIn(result string)
	RecordOTPIssued()
	RecordOTPVerification(result string)
	RecordSessionIssued()
	RecordSessionRejected(reason string)
}

// Collector is the Prometheus implementation of AuthRecorder.
type Collector struct {
	signIns          *prometheus.CounterVec
	otpIssued        prometheus.Counter
	otpVerifications *prometheus.CounterVec
	sessionsIssued   prometheus.Counter
	sessionsRejected *prometheus.CounterVec
}

var _ AuthRecorder = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gamehub_auth_sign_in_total",
			Help: "Password sign-in attempts by result.",
		}, []string{"result"}),
		otpIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gamehub_auth_otp_issued_total",
			Help: "One-time passcodes issued and delivered.",
		}),
		otpVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gamehub_auth_otp_verification_total",
			Help: "One-time passcode verifications by result.",
		}, []string{"result"}),
		sessionsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gamehub_auth_sessions_issued_total",
			Help: "Session tokens issued.",
		}),
		sessionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gamehub_auth_sessions_rejected_total",
			Help: "Requests rejected by the session guard by reason.",
		}, []string{"reason"}),
	}

	reg.MustRegister(
		c.signIns,
		c.otpIssued,
		c.otpVerifications,
		c.sessionsIssued,
		c.sessionsRejected,
	)

	return c
}

// RecordSignIn counts a sign-in attempt.
func (c *Collector) RecordSignIn(result string) {
	c.signIns.WithLabelValues(result).Inc()
}

// RecordOTPIssued counts a delivered code.
func (c *Collector) RecordOTPIssued() {
	c.otpIssued.Inc()
}

// RecordOTPVerification counts a verification attempt.
func (c *Collector) RecordOTPVerification(result string) {
	c.otpVerifications.WithLabelValues(result).Inc()
}

// RecordSessionIssued counts a minted session.
func (c *Collector) RecordSessionIssued() {
	c.sessionsIssued.Inc()
}

// RecordSessionRejected counts a guard rejection.
func (c *Collector) RecordSessionRejected(reason string) {
	c.sessionsRejected.WithLabelValues(reason).Inc()
}

// Nop discards everything. Used when metrics are not wired, e.g. in tests.
type Nop struct{}

func (Nop) RecordSignIn(string)          {}
func (Nop) RecordOTPIssued()             {}
func (Nop) RecordOTPVerification(string) {}
func (Nop) RecordSessionIssued()         {}
func (Nop) RecordSessionRejected(string) {}
