package lockfile

import (
	"github.com/seedkit/seedkit/schema"
	"github.com/seedkit/seedkit/seederr"
)

// DriftReport describes the outcome of comparing a live schema's
// fingerprint against a lock file's recorded one (spec.md §4.4 "seedkit
// check").
type DriftReport struct {
	Drifted          bool
	RecordedFingerprint string
	CurrentFingerprint  string
}

// Check computes s's current fingerprint and compares it against lf's
// recorded one. A mismatch is reported as drift but never returned as an
// error itself -- the caller (cmd/check) decides whether drift should fail
// the command.
func Check(s *schema.Schema, lf *LockFile) (*DriftReport, error) {
	fp, err := schema.ComputeFingerprint(s)
	if err != nil {
		return nil, err
	}
	return &DriftReport{
		Drifted:             fp.Hash != lf.Fingerprint,
		RecordedFingerprint: lf.Fingerprint,
		CurrentFingerprint:  fp.Hash,
	}, nil
}

// RequireNoDrift is Check plus a seederr.LockDrift conversion; cmd/generate
// uses it to refuse --from-lock regeneration against a drifted schema.
func RequireNoDrift(s *schema.Schema, lf *LockFile, table string) error {
	report, err := Check(s, lf)
	if err != nil {
		return err
	}
	if report.Drifted {
		return seederr.LockDrift(table)
	}
	return nil
}
