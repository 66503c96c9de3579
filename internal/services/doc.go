// Package services defines shared error markers for the external tool
// wrappers under internal/services.
//
// Every wrapper reports failures through Wrap so callers can classify them
// with errors.Is without parsing messages. The message still names the tool
// and operation for the operator.
package services
