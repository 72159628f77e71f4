// Package docs DNounce API.
//
// Documentation of the DNounce API: case submission, the case lifecycle,
// community voting and the prelaunch waitlist.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//     Host: https://api.dnounce.com
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//     Security:
//     - basic
//     - bearer
//
//    SecurityDefinitions:
//    basic:
//      type: basic
//    bearer:
//      type: apiKey
//      in: header
//      name: Authorization
//
// swagger:meta
package docs

import (
	"github.com/dnounce/dnounce-api/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive, false means it is not.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route POST /api/v1/cases cases submitCase
// Files a new case.
// responses:
//   201: submitCaseResponse

// swagger:parameters submitCase
type submitCaseParamsWrapper struct {
	// in:body
	Body models.CaseSubmission
}

// The id and type assigned to the new case.
// swagger:response submitCaseResponse
type submitCaseResponseWrapper struct {
	// in:body
	Body models.SubmitCaseResponse
}

// swagger:route GET /api/v1/cases/{case_id} cases caseByID
// Gets a single case and its lifecycle as seen by the given role.
// responses:
//   200: caseResponse

// swagger:parameters caseByID caseLifecycle
type caseIDParamsWrapper struct {
	// in:path
	CaseID string `json:"case_id"`
	// plaintiff, defendant, voter or community
	// in:query
	Role string `json:"role"`
}

// A case with its stage, status line, tracker and permissions.
// swagger:response caseResponse
type caseResponseWrapper struct {
	// in:body
	Body models.CaseResponse
}

// swagger:route GET /api/v1/cases/{case_id}/lifecycle cases caseLifecycle
// Gets only the lifecycle block of a case.
// responses:
//   200: lifecycleResponse

// swagger:response lifecycleResponse
type lifecycleResponseWrapper struct {
	// in:body
	Body models.LifecycleView
}

// swagger:route GET /api/v1/explore cases explore
// Lists the public case feed, newest first.
// responses:
//   200: caseListResponse

// swagger:response caseListResponse
type caseListResponseWrapper struct {
	// in:body
	Body models.CaseListResponse
}

// swagger:route GET /api/v1/cases/{case_id}/votes votes voteTally
// Gets the vote counts once a verdict is reached.
// responses:
//   200: voteTallyResponse

// swagger:response voteTallyResponse
type voteTallyResponseWrapper struct {
	// in:body
	Body models.VoteTally
}

// swagger:route POST /api/v1/waitlist signups waitlist
// Adds an email to the prelaunch waitlist.
// responses:
//   200: storeResponse

// swagger:response storeResponse
type storeResponseWrapper struct {
	// in:body
	Body models.StoreResponse
}

// swagger:route GET /api/v1/admin/stats admin adminStats
// Counts waitlist signups, surveys and cases.
// security:
//   bearer:
// responses:
//   200: statsResponse

// swagger:response statsResponse
type statsResponseWrapper struct {
	// in:body
	Body models.StatsResponse
}
