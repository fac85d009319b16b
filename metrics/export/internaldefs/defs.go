package internaldefs

import (
	goDrive "github.com/ferndrop/goDrive"
)

// CounterDef defines a public type used by goDrive APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goDrive.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the drive client.
var CounterDefs = []CounterDef{
	{ID: goDrive.MetricLoginSuccess, Name: "godrive_login_success_total", Help: "Successful login attempts."},
	{ID: goDrive.MetricLoginFailure, Name: "godrive_login_failure_total", Help: "Failed login attempts."},
	{ID: goDrive.MetricRefreshSuccess, Name: "godrive_refresh_success_total", Help: "Successful token refresh cycles."},
	{ID: goDrive.MetricRefreshFailure, Name: "godrive_refresh_failure_total", Help: "Failed token refresh cycles."},
	{ID: goDrive.MetricRefreshCoalesced, Name: "godrive_refresh_coalesced_total", Help: "Requests that joined an in-flight refresh instead of starting one."},
	{ID: goDrive.MetricRequestRetry, Name: "godrive_request_retry_total", Help: "Transient-failure retries across all requests."},
	{ID: goDrive.MetricRequestReplayed, Name: "godrive_request_replayed_total", Help: "Requests re-sent after a token refresh."},
	{ID: goDrive.MetricSessionExpired, Name: "godrive_session_expired_total", Help: "Terminal refresh failures forcing logout."},
	{ID: goDrive.MetricLogout, Name: "godrive_logout_total", Help: "Explicit logouts."},
	{ID: goDrive.MetricProfileFetchSuccess, Name: "godrive_profile_fetch_success_total", Help: "Successful profile fetches."},
	{ID: goDrive.MetricProfileFetchFailure, Name: "godrive_profile_fetch_failure_total", Help: "Failed profile fetches."},
	{ID: goDrive.MetricRehydrate, Name: "godrive_rehydrate_total", Help: "Session rehydrations from durable storage."},
}
