package datagov

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Record is one monthly MGNREGA reporting row for a district as returned by
// the data.gov.in resource.
type Record struct {
	FinYear      string `json:"fin_year"`
	Month        string `json:"month"`
	StateName    string `json:"state_name"`
	DistrictName string `json:"district_name"`

	PersonDays          Number `json:"Persondays_of_Central_Liability_so_far"`
	HouseholdsWorked    Number `json:"Total_Households_Worked"`
	ActiveWorkers       Number `json:"Total_No_of_Active_Workers"`
	CompletedWorks      Number `json:"Number_of_Completed_Works"`
	OngoingWorks        Number `json:"Number_of_Ongoing_Works"`
	WomenPersonDays     Number `json:"Women_Persondays"`
	IndividualsWorked   Number `json:"Total_Individuals_Worked"`
	AvgDaysPerHousehold Number `json:"Average_days_of_employment_provided_per_Household"`
}

// Number is a counter that may be absent upstream. The API sends counters as
// JSON numbers or as numeric strings, and uses null, "" or "NA" for gaps.
type Number struct {
	Value float64
	Valid bool
}

// N returns a present Number.
func N(v float64) Number {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Number{}
	}
	return Number{Value: v, Valid: true}
}

// UnmarshalJSON never fails on odd values; anything that is not a finite
// number decodes as missing.
func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		*n = Number{}
		return nil
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*n = Number{}
		return nil
	}
	*n = N(v)
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, n.Value, 'f', -1, 64), nil
}

// Or returns the value, or fallback when missing.
func (n Number) Or(fallback float64) float64 {
	if !n.Valid {
		return fallback
	}
	return n.Value
}
