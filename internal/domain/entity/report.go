package entity

import (
	"math"
	"time"

	"github.com/paulmach/orb"
)

type ReportStatus string

const (
	StatusPending    ReportStatus = "Pending"
	StatusInProgress ReportStatus = "In Progress"
	StatusFinished   ReportStatus = "Finished"
)

// ValidStatus reports whether s is one of the enumerated lifecycle states.
func ValidStatus(s ReportStatus) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusFinished:
		return true
	}
	return false
}

var Categories = []string{
	"Traffic & Road Safety",
	"Public Lighting",
	"Waste Management",
	"Water & Sewage",
	"Parks & Green Spaces",
	"Public Transport",
	"Building & Structural Safety",
	"Graffiti & Vandalism",
	"Miscellaneous",
}

func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

type Location struct {
	Lat float64 `json:"lat" firestore:"lat"`
	Lon float64 `json:"lon" firestore:"lon"`
}

// Valid requires finite coordinates within geographic range.
func (l Location) Valid() bool {
	if math.IsNaN(l.Lat) || math.IsInf(l.Lat, 0) || math.IsNaN(l.Lon) || math.IsInf(l.Lon, 0) {
		return false
	}
	return l.Lat >= -90 && l.Lat <= 90 && l.Lon >= -180 && l.Lon <= 180
}

func (l Location) Point() orb.Point {
	return orb.Point{l.Lon, l.Lat}
}

type CreatorKind string

const (
	CreatorUser      CreatorKind = "user"
	CreatorAnonymous CreatorKind = "anonymous"
)

// CreatedBy distinguishes "no auth was attempted" from "user asked to be hidden";
// the latter is the Report.Anonymous flag, not an absent creator.
type CreatedBy struct {
	Kind   CreatorKind `json:"kind" firestore:"kind"`
	UserID string      `json:"user_id,omitempty" firestore:"userId,omitempty"`
}

func IdentifiedBy(userID string) CreatedBy {
	return CreatedBy{Kind: CreatorUser, UserID: userID}
}

func AnonymousCreator() CreatedBy {
	return CreatedBy{Kind: CreatorAnonymous}
}

func (c CreatedBy) Identified() bool {
	return c.Kind == CreatorUser && c.UserID != ""
}

type Report struct {
	ID          string       `json:"id" firestore:"id"`
	Title       string       `json:"title" firestore:"title"`
	Description string       `json:"description" firestore:"description"`
	Category    string       `json:"category" firestore:"category"`
	Location    Location     `json:"location" firestore:"location"`
	Address     string       `json:"address" firestore:"address"`
	Photos      []string     `json:"photos" firestore:"photos"`
	Anonymous   bool         `json:"anonymous" firestore:"anonymous"`
	Emergency   bool         `json:"emergency" firestore:"emergency"`
	Status      ReportStatus `json:"status" firestore:"status"`
	CreatedBy   CreatedBy    `json:"created_by" firestore:"createdBy"`
	CreatedAt   time.Time    `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time    `json:"updated_at" firestore:"updatedAt"`
}
