package models

import "time"

// ReadinessStatus is derived on demand and never persisted. Build it with
// NewReadinessStatus so AllComplete always matches its inputs.
type ReadinessStatus struct {
	ProfileComplete bool      `json:"profileComplete"`
	ClinicComplete  bool      `json:"clinicComplete"`
	DoctorComplete  bool      `json:"doctorComplete"`
	RegionComplete  bool      `json:"regionComplete"`
	AllComplete     bool      `json:"allComplete"`
	LastChecked     time.Time `json:"lastChecked"`
}

func NewReadinessStatus(profile, clinic, doctor, region bool, checkedAt time.Time) ReadinessStatus {
	return ReadinessStatus{
		ProfileComplete: profile,
		ClinicComplete:  clinic,
		DoctorComplete:  doctor,
		RegionComplete:  region,
		AllComplete:     profile && clinic && doctor && region,
		LastChecked:     checkedAt,
	}
}
