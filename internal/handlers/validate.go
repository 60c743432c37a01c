package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for user-supplied fields.
const (
	maxNameLen     = 200
	maxCompanyLen  = 300
	maxRoleLen     = 300
	maxNotesLen    = 10_000
	maxJobDescLen  = 50_000
	maxIndustryLen = 200
	maxResumeLen   = 50_000
)

// validInterviewTypes mirrors the values the client offers.
var validInterviewTypes = map[string]bool{
	"phone":     true,
	"technical": true,
	"onsite":    true,
	"final":     true,
}

// validateName checks a display name, assuming presence was already checked.
func validateName(name string) string {
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Name is too long (max 200 characters)."
	}
	return ""
}

// validateJobFields checks the required and bounded job fields and returns
// the first error found.
func validateJobFields(company, role string) string {
	if strings.TrimSpace(company) == "" || strings.TrimSpace(role) == "" {
		return "Company and role are required"
	}
	if utf8.RuneCountInString(company) > maxCompanyLen {
		return "Company is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(role) > maxRoleLen {
		return "Role is too long (max 300 characters)."
	}
	return ""
}

// validateJobText checks the optional long-form job fields.
func validateJobText(notes, jobDescription, industry *string) string {
	if notes != nil && utf8.RuneCountInString(*notes) > maxNotesLen {
		return "Notes are too long (max 10,000 characters)."
	}
	if jobDescription != nil && utf8.RuneCountInString(*jobDescription) > maxJobDescLen {
		return "Job description is too long (max 50,000 characters)."
	}
	if industry != nil && utf8.RuneCountInString(*industry) > maxIndustryLen {
		return "Industry is too long (max 200 characters)."
	}
	return ""
}

// validateResume bounds the resume text sent to the AI endpoints.
func validateResume(resumeText string) string {
	if utf8.RuneCountInString(resumeText) > maxResumeLen {
		return "Resume is too long (max 50,000 characters)."
	}
	return ""
}
