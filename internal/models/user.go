package models

// User is a row in the profile registry, keyed by phone number.
type User struct {
	Phone           string `json:"phone"`
	Name            string `json:"name"`
	PrivacyAccepted bool   `json:"privacy_accepted"`
	UniqueID        string `json:"unique_id"`
	CreatedAt       string `json:"created_at"`
}
