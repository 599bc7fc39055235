// Package domain defines typed identifiers shared across bounded contexts.
//
// IDs are distinct types over uuid.UUID so the compiler rejects cross-type
// assignment (a CandidateID can never be passed where an InterviewerID is
// expected). Parse functions enforce the trust-boundary invariant that IDs
// are valid, non-empty, non-nil UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "talentgate/pkg/domain-errors"
)

type (
	// CandidateID identifies a candidate aggregate.
	CandidateID uuid.UUID
	// InterviewerID identifies an evaluator aggregate (interviewer or admin).
	InterviewerID uuid.UUID
	// DomainID identifies a work domain in the catalog.
	DomainID uuid.UUID
	// RoundID identifies a round within a domain's ordered sequence.
	RoundID uuid.UUID
	// AssignmentID identifies one assigned-round slot on a candidate.
	AssignmentID uuid.UUID
	// ResultID identifies one immutable round-result attempt.
	ResultID uuid.UUID
)

func parse(raw, kind string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id cannot be empty")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id cannot be the nil UUID")
	}
	return parsed, nil
}

// ParseCandidateID validates and converts a raw string into a CandidateID.
func ParseCandidateID(raw string) (CandidateID, error) {
	parsed, err := parse(raw, "candidate")
	return CandidateID(parsed), err
}

// ParseInterviewerID validates and converts a raw string into an InterviewerID.
func ParseInterviewerID(raw string) (InterviewerID, error) {
	parsed, err := parse(raw, "interviewer")
	return InterviewerID(parsed), err
}

// ParseDomainID validates and converts a raw string into a DomainID.
func ParseDomainID(raw string) (DomainID, error) {
	parsed, err := parse(raw, "domain")
	return DomainID(parsed), err
}

// ParseRoundID validates and converts a raw string into a RoundID.
func ParseRoundID(raw string) (RoundID, error) {
	parsed, err := parse(raw, "round")
	return RoundID(parsed), err
}

// ParseAssignmentID validates and converts a raw string into an AssignmentID.
func ParseAssignmentID(raw string) (AssignmentID, error) {
	parsed, err := parse(raw, "assignment")
	return AssignmentID(parsed), err
}

// ParseResultID validates and converts a raw string into a ResultID.
func ParseResultID(raw string) (ResultID, error) {
	parsed, err := parse(raw, "result")
	return ResultID(parsed), err
}

// NewCandidateID returns a fresh random CandidateID.
func NewCandidateID() CandidateID { return CandidateID(uuid.New()) }

// NewInterviewerID returns a fresh random InterviewerID.
func NewInterviewerID() InterviewerID { return InterviewerID(uuid.New()) }

// NewDomainID returns a fresh random DomainID.
func NewDomainID() DomainID { return DomainID(uuid.New()) }

// NewRoundID returns a fresh random RoundID.
func NewRoundID() RoundID { return RoundID(uuid.New()) }

// NewAssignmentID returns a fresh random AssignmentID.
func NewAssignmentID() AssignmentID { return AssignmentID(uuid.New()) }

// NewResultID returns a fresh random ResultID.
func NewResultID() ResultID { return ResultID(uuid.New()) }

func (id CandidateID) String() string   { return uuid.UUID(id).String() }
func (id InterviewerID) String() string { return uuid.UUID(id).String() }
func (id DomainID) String() string      { return uuid.UUID(id).String() }
func (id RoundID) String() string       { return uuid.UUID(id).String() }
func (id AssignmentID) String() string  { return uuid.UUID(id).String() }
func (id ResultID) String() string      { return uuid.UUID(id).String() }

func (id CandidateID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id InterviewerID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id DomainID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id RoundID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id AssignmentID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id ResultID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }

// MarshalText makes IDs JSON-encode as their canonical UUID string.
func (id CandidateID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id InterviewerID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id DomainID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }
func (id RoundID) MarshalText() ([]byte, error)       { return []byte(id.String()), nil }
func (id AssignmentID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id ResultID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }

// UnmarshalText parses a canonical UUID string, enforcing the same rules as
// the Parse functions.
func (id *CandidateID) UnmarshalText(b []byte) error {
	parsed, err := parse(string(b), "candidate")
	*id = CandidateID(parsed)
	return err
}

func (id *InterviewerID) UnmarshalText(b []byte) error {
	parsed, err := parse(string(b), "interviewer")
	*id = InterviewerID(parsed)
	return err
}

func (id *DomainID) UnmarshalText(b []byte) error {
	parsed, err := parse(string(b), "domain")
	*id = DomainID(parsed)
	return err
}

func (id *RoundID) UnmarshalText(b []byte) error {
	parsed, err := parse(string(b), "round")
	*id = RoundID(parsed)
	return err
}

func (id *AssignmentID) UnmarshalText(b []byte) error {
	parsed, err := parse(string(b), "assignment")
	*id = AssignmentID(parsed)
	return err
}

func (id *ResultID) UnmarshalText(b []byte) error {
	parsed, err := parse(string(b), "result")
	*id = ResultID(parsed)
	return err
}
