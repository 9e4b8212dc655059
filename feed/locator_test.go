package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gasDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLocateExactURL(t *testing.T) {
	timely, _ := CycleByName("timely")
	url, filename := Locate(gasDay(2025, time.March, 7), timely)

	assert.Equal(t,
		BaseURL+"?f=csv&extension=csv&asset=TW&gasDay=03%2F07%2F2025&cycle=0&searchType=NOM&searchString=&locType=ALL&locZone=ALL",
		url)
	assert.Equal(t, "tec_data_20250307_cycle_0.csv", filename)
}

func TestLocateDeterministic(t *testing.T) {
	final, _ := CycleByName("final")
	day := gasDay(2025, time.December, 31)

	url1, f1 := Locate(day, final)
	url2, f2 := Locate(day, final)
	assert.Equal(t, url1, url2)
	assert.Equal(t, f1, f2)
}

func TestLocateInjective(t *testing.T) {
	urls := make(map[string]bool)
	files := make(map[string]bool)

	for dayOffset := 0; dayOffset < 5; dayOffset++ {
		day := gasDay(2025, time.June, 1).AddDate(0, 0, dayOffset)
		for _, cycle := range Catalog {
			url, filename := Locate(day, cycle)
			assert.False(t, urls[url], "duplicate URL for %s %s", day, cycle)
			assert.False(t, files[filename], "duplicate filename for %s %s", day, cycle)
			urls[url] = true
			files[filename] = true
		}
	}
}

func TestFilenameRoundTrip(t *testing.T) {
	for _, cycle := range Catalog {
		id := ArtifactIdentity{GasDay: gasDay(2024, time.February, 29), Cycle: cycle}
		parsed, err := ParseFilename(id.Filename())
		require.NoError(t, err)
		assert.True(t, id.Equal(parsed), "round trip changed identity for %s", cycle)
		assert.Equal(t, cycle.Name, parsed.Cycle.Name)
	}
}

func TestParseFilenameRejectsNonCanonical(t *testing.T) {
	for _, name := range []string{
		"tec_data_2025_cycle_0.csv",
		"tec_data_20250307.csv",
		"notes.txt",
		"tec_data_20250307_cycle_0.csv.bak",
	} {
		_, err := ParseFilename(name)
		assert.Error(t, err, "expected rejection of %s", name)
	}
}

func TestParseFilenameUnknownCode(t *testing.T) {
	id, err := ParseFilename("tec_data_20250307_cycle_9.csv")
	require.NoError(t, err)
	assert.Equal(t, 9, id.Cycle.Code)
	assert.Equal(t, "cycle_9", id.Cycle.Name)
}

func TestIdentityEqualIgnoresTimeOfDay(t *testing.T) {
	timely, _ := CycleByName("timely")
	evening, _ := CycleByName("evening")

	morning := ArtifactIdentity{GasDay: time.Date(2025, 3, 7, 8, 0, 0, 0, time.UTC), Cycle: timely}
	night := ArtifactIdentity{GasDay: time.Date(2025, 3, 7, 23, 50, 0, 0, time.Local), Cycle: timely}
	assert.True(t, morning.Equal(night))

	otherCycle := ArtifactIdentity{GasDay: morning.GasDay, Cycle: evening}
	assert.False(t, morning.Equal(otherCycle))
}
