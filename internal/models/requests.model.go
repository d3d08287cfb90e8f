package models

type UpdateEmailDraftRequest struct {
	Fields map[string]string `json:"fields"`
}

type SetEmailEnabledRequest struct {
	Enabled *bool `json:"enabled"`
}

type SendTestEmailRequest struct {
	TestRecipient string `json:"testRecipient"`
}
