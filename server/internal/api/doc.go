// Package api implements the REST handlers for ecolab-server under /api/v1.
//
// Endpoints:
//
//	GET  /api/v1/health                    session counts by grade, firing alerts
//	POST /api/v1/evaluate/water            grade a water sample (stateless)
//	POST /api/v1/evaluate/air              grade an air sample (stateless)
//	GET  /api/v1/sessions                  list live sessions
//	POST /api/v1/sessions                  start a session {"lab": "water"|"air"}
//	GET  /api/v1/sessions/{id}             one session
//	DELETE /api/v1/sessions/{id}           end a session, resolving its alerts
//	PUT  /api/v1/sessions/{id}/measurement replace the session's reading
//	POST /api/v1/sessions/{id}/monitor     {"active": bool}
//	POST /api/v1/sessions/{id}/reset       restore lab defaults
//	GET  /api/v1/sessions/{id}/history     monitored readings
//	GET  /api/v1/sessions/{id}/chart       water trend chart points
//	GET  /api/v1/sessions/{id}/report      plain-language lab report
//	GET  /api/v1/alerts                    firing and recently resolved alerts
//	GET  /api/v1/snapshot                  every live session (the ws payload)
//
// All responses are JSON. Errors use {"error": "..."}.
package api
