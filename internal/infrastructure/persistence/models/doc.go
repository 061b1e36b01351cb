// Package models contains GORM persistence models that map to database tables.
// They are kept apart from domain entities so the domain layer stays free of
// ORM tags. Each model has ToDomain / FromDomain mappers; repositories only
// ever read and write models.
//
// Files are grouped by bounded context: crm, work, billing, scheduling,
// files, messaging, notification, finance, marketing and settings.
package models
