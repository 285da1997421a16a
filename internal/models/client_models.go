package models

import "time"

// Gender values accepted for a client record.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

// IsValidGender reports whether g is one of the accepted gender values.
func IsValidGender(g string) bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}

// Client represents a single consultancy client's contact, birth, and billing data.
// The id field is the public identifier; Mongo's own _id stays internal.
type Client struct {
	ID               string    `bson:"id" json:"id"`
	Name             string    `bson:"name" json:"name"`
	Email            string    `bson:"email" json:"email"`
	Address          string    `bson:"address" json:"address"`
	Mobile           string    `bson:"mobile" json:"mobile"`
	DOB              string    `bson:"dob" json:"dob"`
	BirthTime        string    `bson:"birthTime" json:"birthTime"`
	DOT              string    `bson:"dot" json:"dot"`
	ProblemStatement string    `bson:"problemStatement" json:"problemStatement"`
	Gender           string    `bson:"gender" json:"gender"`
	ChargeableAmount float64   `bson:"chargeableAmount" json:"chargeableAmount"`
	PaidAmount       float64   `bson:"paidAmount" json:"paidAmount"`
	CreatedAt        time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time `bson:"updatedAt" json:"updatedAt"`
}

// RemainingAmount is derived, never persisted.
func (c *Client) RemainingAmount() float64 {
	return c.ChargeableAmount - c.PaidAmount
}

// ClientSearchCriteria holds the optional search filters. Every present field
// narrows the result set; absent fields impose no constraint.
type ClientSearchCriteria struct {
	Name   string // case-insensitive substring
	Mobile string // case-insensitive substring
	Gender string // exact match against the gender enum
	Date   string // matches either dob or dot exactly
}

// IsEmpty reports whether no filter is set.
func (c ClientSearchCriteria) IsEmpty() bool {
	return c.Name == "" && c.Mobile == "" && c.Gender == "" && c.Date == ""
}
