package feed

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/teranos/tecflow/errors"
)

// BaseURL is the operator's operationally-available capacity endpoint
const BaseURL = "https://twtransfer.energytransfer.com/ipost/capacity/operationally-available"

// ArtifactIdentity uniquely identifies one published artifact: a gas day
// (calendar date, no time component) and a nomination cycle. It determines
// both the fetch URL and the canonical local filename.
type ArtifactIdentity struct {
	GasDay time.Time
	Cycle  CycleDefinition
}

// Equal reports whether two identities refer to the same artifact.
// Only the calendar date and the cycle code participate; time-of-day and
// location on the GasDay value are ignored.
func (id ArtifactIdentity) Equal(other ArtifactIdentity) bool {
	ay, am, ad := id.GasDay.Date()
	by, bm, bd := other.GasDay.Date()
	return ay == by && am == bm && ad == bd && id.Cycle.Code == other.Cycle.Code
}

// Filename returns the canonical artifact filename,
// tec_data_{YYYYMMDD}_cycle_{code}.csv. The filename doubles as the
// idempotency key: re-fetching the same slot overwrites the same file.
func (id ArtifactIdentity) Filename() string {
	return fmt.Sprintf("tec_data_%s_cycle_%d.csv", id.GasDay.Format("20060102"), id.Cycle.Code)
}

func (id ArtifactIdentity) String() string {
	return fmt.Sprintf("%s/%s", id.GasDay.Format("2006-01-02"), id.Cycle.Name)
}

// Locate derives the fetch URL and canonical filename for a (gas day, cycle)
// pair. Pure function: no I/O, no failure modes, deterministic and injective
// over distinct pairs.
//
// The operator expects the gas day as MM/DD/YYYY with the slashes
// percent-encoded, and a fixed set of query parameters selecting CSV output
// for the TW asset across all locations and zones. Parameter order is kept
// stable so fetch logs are reproducible.
func Locate(gasDay time.Time, cycle CycleDefinition) (fetchURL, filename string) {
	// Not time.Format: "%2F" contains the layout element "2" (day of month)
	encodedDay := fmt.Sprintf("%s%%2F%s%%2F%s",
		gasDay.Format("01"), gasDay.Format("02"), gasDay.Format("2006"))

	fetchURL = fmt.Sprintf(
		"%s?f=csv&extension=csv&asset=TW&gasDay=%s&cycle=%d&searchType=NOM&searchString=&locType=ALL&locZone=ALL",
		BaseURL, encodedDay, cycle.Code)

	return fetchURL, ArtifactIdentity{GasDay: gasDay, Cycle: cycle}.Filename()
}

var filenamePattern = regexp.MustCompile(`^tec_data_(\d{8})_cycle_(\d+)\.csv$`)

// ParseFilename reconstructs an ArtifactIdentity from a canonical filename.
// Used by skip-acquisition mode to adopt pre-existing artifacts, and by the
// loader to stamp the derived cycle column. Codes outside the catalog are
// accepted with a synthesized name, matching how the artifact would have
// been logged when fetched.
func ParseFilename(name string) (ArtifactIdentity, error) {
	m := filenamePattern.FindStringSubmatch(name)
	if m == nil {
		return ArtifactIdentity{}, errors.Newf("not a canonical artifact filename: %s", name)
	}

	gasDay, err := time.Parse("20060102", m[1])
	if err != nil {
		return ArtifactIdentity{}, errors.Wrapf(err, "invalid gas day in %s", name)
	}

	code, err := strconv.Atoi(m[2])
	if err != nil {
		return ArtifactIdentity{}, errors.Wrapf(err, "invalid cycle code in %s", name)
	}

	cycle, ok := CycleByCode(code)
	if !ok {
		cycle = CycleDefinition{Name: fmt.Sprintf("cycle_%d", code), Code: code}
	}

	return ArtifactIdentity{GasDay: gasDay, Cycle: cycle}, nil
}
