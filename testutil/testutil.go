// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/danielhkuo/ballotboard/auth"
	"github.com/danielhkuo/ballotboard/cliparse"
	"github.com/danielhkuo/ballotboard/db"
	"github.com/danielhkuo/ballotboard/models"
)

// TestAdminSalt is the admin key salt of GetTestConfig
const TestAdminSalt = "test-admin-salt"

// SetupTestDB creates a fresh in-memory database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration pointing at upstreamURL
func GetTestConfig(upstreamURL string) cliparse.Config {
	cfg := cliparse.Defaults()
	cfg.DatabaseURL = ":memory:"
	cfg.AdminKeySalt = TestAdminSalt
	cfg.UpstreamURL = upstreamURL
	cfg.UpstreamCacheTTL = 0
	cfg.UpstreamRPS = 0
	cfg.Timezone = "UTC"
	return cfg
}

// AdminKey returns the valid admin key for electionID under GetTestConfig
func AdminKey(electionID string) string {
	return auth.GenerateAdminKey(electionID, TestAdminSalt)
}

// Upstream is a fake election API serving the three endpoints the service reads
type Upstream struct {
	*httptest.Server

	mu         sync.Mutex
	elections  map[string]models.Election
	voters     map[string][]models.PositionVoters
	codes      map[string][]models.VoterCode
	failStatus int
	hits       map[string]int
}

// NewUpstream starts a fake election API that is closed when the test ends
func NewUpstream(t *testing.T) *Upstream {
	t.Helper()

	u := &Upstream{
		elections: make(map[string]models.Election),
		voters:    make(map[string][]models.PositionVoters),
		codes:     make(map[string][]models.VoterCode),
		hits:      make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /elections/{id}/details", u.serve(func(id string) (any, bool) {
		e, ok := u.elections[id]
		return map[string]any{"election": e}, ok
	}))
	mux.HandleFunc("GET /elections/{id}/votes-per-candidate", u.serve(func(id string) (any, bool) {
		_, ok := u.elections[id]
		positions := u.voters[id]
		if positions == nil {
			positions = []models.PositionVoters{}
		}
		return map[string]any{"positions": positions}, ok
	}))
	mux.HandleFunc("GET /elections/{id}/voter-codes", u.serve(func(id string) (any, bool) {
		_, ok := u.elections[id]
		codes := u.codes[id]
		if codes == nil {
			codes = []models.VoterCode{}
		}
		return map[string]any{"voterCodes": codes}, ok
	}))

	u.Server = httptest.NewServer(mux)
	t.Cleanup(u.Close)
	return u
}

func (u *Upstream) serve(lookup func(id string) (any, bool)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		defer u.mu.Unlock()

		u.hits[r.URL.Path]++
		if u.failStatus != 0 {
			http.Error(w, `{"error":"upstream failure"}`, u.failStatus)
			return
		}

		payload, ok := lookup(r.PathValue("id"))
		if !ok {
			http.Error(w, `{"error":"election not found"}`, http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload)
	}
}

// SetElection publishes the details of an election
func (u *Upstream) SetElection(e models.Election) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.elections[e.ID] = e
}

// SetVoters publishes per-candidate voter codes for an election
func (u *Upstream) SetVoters(electionID string, positions []models.PositionVoters) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.voters[electionID] = positions
}

// SetVoterCodes publishes the voter code list of an election
func (u *Upstream) SetVoterCodes(electionID string, codes []models.VoterCode) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.codes[electionID] = codes
}

// Fail makes every endpoint answer with status; 0 restores normal service
func (u *Upstream) Fail(status int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.failStatus = status
}

// Hits is the number of requests served for path
func (u *Upstream) Hits(path string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.hits[path]
}

// SampleElection is a completed election with a clear winner, a tie and a
// position nobody voted in
func SampleElection(id string) models.Election {
	return models.Election{
		ID:         id,
		Title:      "Student Council 2025",
		Status:     models.StatusCompleted,
		DateFrom:   "2025-05-01",
		DateTo:     "2025-05-02",
		StartTime:  "08:00",
		EndTime:    "17:00",
		VoterCount: 10,
		VoteCount:  6,
		Positions: []models.Position{
			{ID: "pres", Name: "President", MaxChoices: 1, Candidates: []models.Candidate{
				{ID: "c1", FirstName: "juan", LastName: "cruz", Party: "Blue", VoteCount: 2},
				{ID: "c2", FirstName: "Maria", LastName: "Santos", Party: "Red", VoteCount: 4},
			}},
			{ID: "vp", Name: "Vice President", MaxChoices: 1, Candidates: []models.Candidate{
				{ID: "c3", FirstName: "Ana", LastName: "Reyes", VoteCount: 3},
				{ID: "c4", FirstName: "Ben", LastName: "Lim", VoteCount: 3},
			}},
			{ID: "sec", Name: "Secretary", MaxChoices: 1, Candidates: []models.Candidate{
				{ID: "c5", GroupName: "team alpha", VoteCount: 0},
				{ID: "c6", FirstName: "Carla", LastName: "Tan", VoteCount: 0},
			}},
		},
	}
}

// SampleVoters matches SampleElection's President race
func SampleVoters() []models.PositionVoters {
	return []models.PositionVoters{
		{ID: "pres", Name: "President", Candidates: []models.CandidateVoters{
			{ID: "c1", FirstName: "juan", LastName: "cruz", VoteCount: 2, Voters: SampleCodes(2)},
			{ID: "c2", FirstName: "Maria", LastName: "Santos", VoteCount: 4, Voters: SampleCodes(4)},
		}},
	}
}

// SampleCodes returns n distinct voter codes
func SampleCodes(n int) []models.VoterCode {
	codes := make([]models.VoterCode, n)
	for i := range codes {
		codes[i] = models.VoterCode{
			VerificationCode: "VC" + string(rune('A'+i%26)) + string(rune('0'+i/26%10)),
			VoteDate:         "2025-05-01",
		}
	}
	return codes
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
