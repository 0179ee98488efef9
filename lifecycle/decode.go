package lifecycle

import (
	"bytes"
	"fmt"

	"github.com/Keksclan/goRawrSheets/ops"
)

// DecodeCandidates decodes a list read such as listCandidates or
// getCandidatesByStatus.
func DecodeCandidates(resp ops.Response) ([]Candidate, error) {
	var out []Candidate
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeCandidate decodes a single-record read. A one-element list is
// accepted as well, since some store variants answer getCandidate with
// one.
func DecodeCandidate(resp ops.Response) (Candidate, error) {
	if !resp.Success {
		return Candidate{}, resp.Err()
	}
	if trimmed := bytes.TrimSpace(resp.Data); len(trimmed) > 0 && trimmed[0] == '[' {
		list, err := DecodeCandidates(resp)
		if err != nil {
			return Candidate{}, err
		}
		if len(list) != 1 {
			return Candidate{}, fmt.Errorf("expected one candidate, got %d", len(list))
		}
		return list[0], nil
	}
	var c Candidate
	if err := resp.Decode(&c); err != nil {
		return Candidate{}, err
	}
	return c, nil
}
