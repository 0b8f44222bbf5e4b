package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/octobees/campsites/api/internal/entity"
	"github.com/octobees/campsites/api/internal/metrics"
	"github.com/octobees/campsites/api/internal/repository"
)

const exampleCSV = `lon,lat,composite,code,name,type,phone,dates_open,comments,num_campsites,elevation_ft,amenities,state,nearest_town_distance,nearest_town_bearing,nearest_town
-73.098,41.651,BLAC/Black Rock State Park  SP PH:860.283.8088 early may-late sep  SITES:100  AMEN:NH DP RS approx 2.1 mi SW of Thomaston 41.651 -73.098,BLAC,Black Rock State Park,SP,860.283.8088,early may-late sep, ,100, ,NH DP RS ,CT,2.1,SW,Thomaston
-72.342,41.484,DEVI/Devils Hopyard State Park  SP PH:860.526.2336 mid apr-late sep  SITES:20  AMEN:NH RS approx 7.0 mi E of East Haddam 41.484 -72.342,DEVI,Devils Hopyard State Park,SP,860.526.2336,mid apr-late sep, ,20, ,NH RS ,CT,7.0,E,East Haddam
-71.811,41.534,GREE/Green Falls - Pachaug State Forest  SF PH:860.376.4075   SITES:20  AMEN:NH NR  41.534 -71.811,GREE,Green Falls - Pachaug State Forest,SF,860.376.4075, , ,20, ,NH NR ,CT,,,
-72.556,41.265,HAMM/Hammonasset State Park  SP PH:203.245.1817 early jun-late sep  SITES:550  AMEN:E DP DW SH RS approx 0.1 mi E of Madison 41.265 -72.556,HAMM,Hammonasset State Park,SP,203.245.1817,early jun-late sep, ,550, ,E DP DW SH RS ,CT,0.1,E,Madison
`

const incorrectCSV = `lon,lat,composite,code,name,type,phone,dates_open,comments,num_campsites,elevation_ft,amenities,state,nearest_town_distance,nearest_town_bearing,nearest_town
-73.098,41.651,,,,,,,,,,,,,,
`

type recordingObserver struct {
	counts map[string]int
}

func (r *recordingObserver) ObserveImport(outcome string, rows int) {
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[outcome] += rows
}

func TestCampsitesService_ImportCSV(t *testing.T) {
	obs := &recordingObserver{}
	svc := NewCampsitesService(repository.NewMemoryRepository(entity.CampsiteSchema), "US", obs)
	ctx := context.Background()

	summary, err := svc.ImportCSV(ctx, strings.NewReader(exampleCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Inserted != 4 || obs.counts[metrics.OutcomeInserted] != 4 {
		t.Fatalf("expected 4 inserted, got %+v / %v", summary, obs.counts)
	}

	page, err := svc.List(ctx, svc.Schema().Defaults())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.NumTotalResults != 4 {
		t.Fatalf("expected 4 rows, got %d", page.NumTotalResults)
	}

	black := page.Items[0]
	if black.Name != "Black Rock State Park" {
		t.Fatalf("expected Black Rock first by name, got %s", black.Name)
	}
	if black.Phone == nil || !strings.Contains(*black.Phone, "8602838088") {
		t.Fatalf("unexpected phone %v", black.Phone)
	}
	if black.MonthOpen == nil || *black.MonthOpen != 5 || black.MonthClose == nil || *black.MonthClose != 9 {
		t.Fatalf("unexpected season %v-%v", black.MonthOpen, black.MonthClose)
	}
	if black.HasRVHookup == nil || *black.HasRVHookup || black.HasSanitaryDump == nil || !*black.HasSanitaryDump {
		t.Fatalf("unexpected amenities %+v", black)
	}
	if black.AcceptsReservations == nil || !*black.AcceptsReservations {
		t.Fatalf("expected reservations accepted")
	}
	if black.CampsiteType == nil || *black.CampsiteType != "SP" || black.Country != entity.CountryUSA {
		t.Fatalf("unexpected classification %+v", black)
	}
	if black.NearestTownBearing == nil || *black.NearestTownBearing != "SW" || black.Code == nil || *black.Code != "BLAC" {
		t.Fatalf("unexpected nearest town fields %+v", black)
	}
	if black.Comments != nil || black.ElevationFt != nil {
		t.Fatalf("blank columns should be null: %+v", black)
	}

	green := page.Items[2]
	if green.MonthOpen != nil || green.NearestTownDistance != nil || green.NearestTownBearing != nil {
		t.Fatalf("blank optional fields should stay unset: %+v", green)
	}

	hamm := page.Items[3]
	if hamm.HasElectricHookup == nil || !*hamm.HasElectricHookup || hamm.HasRVHookup == nil || !*hamm.HasRVHookup {
		t.Fatalf("E should set an electric hookup: %+v", hamm)
	}
	if hamm.HasShowers == nil || !*hamm.HasShowers || hamm.HasDrinkingWater == nil || !*hamm.HasDrinkingWater {
		t.Fatalf("SH and DW should be set: %+v", hamm)
	}
}

func TestCampsitesService_ImportCSVIsAtomic(t *testing.T) {
	obs := &recordingObserver{}
	svc := NewCampsitesService(repository.NewMemoryRepository(entity.CampsiteSchema), "US", obs)
	ctx := context.Background()

	mixed := exampleCSV + "-73.098,41.651,,,,,,,,,,,,,,\n"
	_, err := svc.ImportCSV(ctx, strings.NewReader(mixed))
	var verr CSVValidationError
	if !errors.As(err, &verr) || verr.Row != 6 {
		t.Fatalf("expected CSVValidationError on row 6, got %v", err)
	}
	if obs.counts[metrics.OutcomeRejected] != 5 {
		t.Fatalf("expected 5 rejected rows, got %v", obs.counts)
	}

	page, _ := svc.List(ctx, svc.Schema().Defaults())
	if page.NumTotalResults != 0 {
		t.Fatalf("expected nothing persisted, got %d", page.NumTotalResults)
	}
}

func TestCampsitesService_ImportCSVErrors(t *testing.T) {
	tests := map[string]struct {
		csv         string
		expectError string
	}{
		"empty file": {
			csv:         ``,
			expectError: "csv file is empty",
		},
		"missing headers": {
			csv:         "lon,lat,name\n1,2,x\n",
			expectError: "missing required columns",
		},
		"incorrect row": {
			csv:         incorrectCSV,
			expectError: "row 2: composite is required",
		},
		"bad state": {
			csv:         strings.Replace(exampleCSV, ",CT,2.1,", ",XX,2.1,", 1),
			expectError: `invalid state "XX"`,
		},
		"bad number": {
			csv:         strings.Replace(exampleCSV, ",100, ,", ",lots, ,", 1),
			expectError: "invalid num_campsites",
		},
		"nan longitude": {
			csv:         strings.Replace(exampleCSV, "\n-72.342,41.484,", "\nNaN,41.484,", 1),
			expectError: "row 3: invalid record: lon NaN out of range",
		},
		"ragged row": {
			csv:         exampleCSV + "1,2,3\n",
			expectError: "wrong number of fields",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			svc := newMemoryCampsites()
			summary, err := svc.ImportCSV(context.Background(), strings.NewReader(tt.csv))
			if err == nil || !strings.Contains(err.Error(), tt.expectError) {
				t.Fatalf("expected error containing %q, got %v", tt.expectError, err)
			}
			var verr CSVValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected CSVValidationError, got %T", err)
			}
			if (summary != UploadSummary{}) {
				t.Fatalf("expected zero summary on error, got %+v", summary)
			}
		})
	}
}

func TestParseDatesOpen(t *testing.T) {
	cases := map[string][2]int{
		"early may-late sep": {5, 9},
		"mid apr-late oct":   {4, 10},
		"jun-sept":           {6, 9},
	}
	for in, want := range cases {
		open, closeMonth := parseDatesOpen(in)
		if open == nil || closeMonth == nil || *open != want[0] || *closeMonth != want[1] {
			t.Fatalf("parseDatesOpen(%q) = %v,%v want %v", in, open, closeMonth, want)
		}
	}
	for _, in := range []string{"", "all year", "early foo-late bar"} {
		if open, closeMonth := parseDatesOpen(in); open != nil || closeMonth != nil {
			t.Fatalf("parseDatesOpen(%q) should be unset", in)
		}
	}
}

func TestApplyAmenities(t *testing.T) {
	var c entity.Campsite
	applyAmenities(&c, []string{"WES", "FTVT", "PA", "L$", "ZZ"})
	if !*c.HasWaterHookup || !*c.HasSewerHookup || !*c.HasRVHookup {
		t.Fatalf("WES should set all hookups: %+v", c)
	}
	if c.ToiletType == nil || *c.ToiletType != "mixed" || !*c.HasToilets {
		t.Fatalf("FTVT should be mixed toilets: %+v", c)
	}
	if !*c.AcceptsPets || !*c.LowNoFee {
		t.Fatalf("PA and L$ should be set: %+v", c)
	}

	applyAmenities(&c, []string{"NT", "NP"})
	if *c.HasToilets || c.ToiletType != nil || *c.AcceptsPets {
		t.Fatalf("NT/NP should clear: %+v", c)
	}
}

func TestNormalizePhone(t *testing.T) {
	if got := normalizePhone("860.283.8088", "US"); got != "+18602838088" {
		t.Fatalf("unexpected E.164 %q", got)
	}
	if got := normalizePhone("  call ranger  ", "US"); got != "call ranger" {
		t.Fatalf("unparsable numbers should be kept verbatim, got %q", got)
	}
	if phoneRegion(entity.CountryCanada, "US") != "CA" || phoneRegion(entity.CountryUSA, "") != "US" {
		t.Fatalf("unexpected region selection")
	}
}
