// Package constants holds identifiers shared between configuration and wiring code.
package constants

// Environments.
const (
	EnvDevelop    = "develop"
	EnvProduction = "production"
)

// Mail transport providers.
const (
	MailProviderSMTP   = "smtp"
	MailProviderGoogle = "google"
	MailProviderLocal  = "local"
)

// Message attributes carried on published mail messages.
const (
	AttrRequestID = "request_id"
	AttrPurpose   = "purpose"
)
