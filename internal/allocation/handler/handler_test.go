package handler

import (
	"bytes"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"trichluc/internal/allocation/models"
	allocservice "trichluc/internal/allocation/service"
	allocstore "trichluc/internal/allocation/store"
	counterstore "trichluc/internal/counter/store"
	"trichluc/internal/recordlink"
	wardservice "trichluc/internal/ward/service"
	wardstore "trichluc/internal/ward/store"
	"trichluc/pkg/testutil"
)

// AllocationHandlerSuite exercises the handler against real in-memory
// components rather than mocks.
type AllocationHandlerSuite struct {
	suite.Suite
	router http.Handler
	linker *recordlink.InMemoryLinker
}

func TestAllocationHandlerSuite(t *testing.T) {
	suite.Run(t, new(AllocationHandlerSuite))
}

func (s *AllocationHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	wards := wardservice.New(wardstore.NewInMemory(), logger, nil)
	s.linker = recordlink.NewInMemory()
	svc := allocservice.New(
		counterstore.NewInMemory(),
		allocstore.NewInMemory(),
		wards,
		s.linker,
		logger,
		nil,
		2025,
	)

	r := chi.NewRouter()
	New(svc, logger).Register(r)
	s.router = r
}

func (s *AllocationHandlerSuite) allocate(body any) *http.Request {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/allocations", body)
	req = testutil.WithOperator(req, "clerk-1")
	return testutil.WithTime(req, time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC))
}

func (s *AllocationHandlerSuite) TestAllocate() {
	rr := testutil.DoRequest(s.router, s.allocate(map[string]any{
		"ward": "Minh Hưng", "year": 2025, "sheet": "10", "plot": "155",
	}))
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)

	record := testutil.UnmarshalResponse[models.AllocationRecord](s.T(), rr)
	s.EqualValues(1, record.IssuedNumber)
	s.Equal("clerk-1", record.IssuedBy)

	rr = testutil.DoRequest(s.router, s.allocate(map[string]any{
		"ward": "Minh Hưng", "year": 2025, "sheet": "10", "plot": "156",
	}))
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	record = testutil.UnmarshalResponse[models.AllocationRecord](s.T(), rr)
	s.EqualValues(2, record.IssuedNumber)
}

func (s *AllocationHandlerSuite) TestAllocateInvalidBody() {
	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/allocations", "{not json")
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
}

func (s *AllocationHandlerSuite) TestAllocateMissingFields() {
	rr := testutil.DoRequest(s.router, s.allocate(map[string]any{
		"ward": "Minh Hưng",
	}))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
}

func (s *AllocationHandlerSuite) TestQuery() {
	for _, plot := range []string{"155", "156", "157"} {
		rr := testutil.DoRequest(s.router, s.allocate(map[string]any{
			"ward": "Nha Bích", "year": 2026, "sheet": "3", "plot": plot,
		}))
		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	}

	req := testutil.NewRequest(s.T(), http.MethodGet, "/allocations?ward=Nha+Bích&year=2026")
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusOK)

	resp := testutil.UnmarshalResponse[struct {
		Allocations []models.AllocationRecord `json:"allocations"`
	}](s.T(), rr)
	s.Len(resp.Allocations, 3)

	req = testutil.NewRequest(s.T(), http.MethodGet, "/allocations?ward=Nha+Bích&year=2026&limit=1")
	rr = testutil.DoRequest(s.router, req)
	resp = testutil.UnmarshalResponse[struct {
		Allocations []models.AllocationRecord `json:"allocations"`
	}](s.T(), rr)
	s.Len(resp.Allocations, 1)
}

func (s *AllocationHandlerSuite) TestQueryEmptyIsArray() {
	req := testutil.NewRequest(s.T(), http.MethodGet, "/allocations")
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.JSONEq(`{"allocations":[]}`, rr.Body.String())
}

func (s *AllocationHandlerSuite) TestQueryInvalidYear() {
	req := testutil.NewRequest(s.T(), http.MethodGet, "/allocations?year=banana")
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
}

func (s *AllocationHandlerSuite) TestPrefill() {
	s.linker.Seed(recordlink.RecordMeta{
		Code: "HS-2025-0042", Ward: "Minh Hưng", Sheet: "10", Plot: "155", DisplayName: "Nguyễn Văn A",
	})

	req := testutil.NewRequest(s.T(), http.MethodGet, "/records/HS-2025-0042")
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusOK)

	meta := testutil.UnmarshalResponse[recordlink.RecordMeta](s.T(), rr)
	s.Equal("Minh Hưng", meta.Ward)
	s.Equal("155", meta.Plot)
}

func (s *AllocationHandlerSuite) TestPrefillNotFound() {
	req := testutil.NewRequest(s.T(), http.MethodGet, "/records/HS-NOPE")
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
}
