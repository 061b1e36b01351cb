package query

// Resource names used in keys and fan-out
const (
	ResourceClients       = "clients"
	ResourceProjects      = "projects"
	ResourceTasks         = "tasks"
	ResourceInvoices      = "invoices"
	ResourceCalendars     = "calendars"
	ResourceEvents        = "events"
	ResourceBookings      = "bookings"
	ResourceFiles         = "files"
	ResourceFolders       = "folders"
	ResourceConversations = "conversations"
	ResourceMessages      = "messages"
	ResourceNotifications = "notifications"
	ResourceFinance       = "finance"
	ResourceBanking       = "banking"
	ResourceLeads         = "leads"
	ResourceCampaigns     = "campaigns"
	ResourceAnalytics     = "analytics"
	ResourceSettings      = "settings"
)

// whole returns the prefix covering every key of a resource
func whole(resource string) string {
	return resource + ":"
}

// DefaultFanOut lists the key prefixes dropped after a write to each resource
func DefaultFanOut() map[string][]string {
	return map[string][]string{
		ResourceClients:       {whole(ResourceClients), whole(ResourceAnalytics)},
		ResourceProjects:      {whole(ResourceProjects), StatsKey(ResourceClients), whole(ResourceAnalytics)},
		ResourceTasks:         {whole(ResourceTasks), StatsKey(ResourceProjects), whole(ResourceAnalytics)},
		ResourceInvoices:      {whole(ResourceInvoices), whole(ResourceClients), whole(ResourceAnalytics)},
		ResourceCalendars:     {whole(ResourceCalendars), whole(ResourceEvents)},
		ResourceEvents:        {whole(ResourceEvents), StatsKey(ResourceCalendars)},
		ResourceBookings:      {whole(ResourceBookings), StatsKey(ResourceCalendars)},
		ResourceFiles:         {whole(ResourceFiles), whole(ResourceFolders)},
		ResourceFolders:       {whole(ResourceFolders), whole(ResourceFiles)},
		ResourceNotifications: {whole(ResourceNotifications)},
		ResourceFinance:       {whole(ResourceFinance), whole(ResourceAnalytics)},
		ResourceBanking:       {whole(ResourceBanking), whole(ResourceFinance)},
		ResourceLeads:         {whole(ResourceLeads), whole(ResourceClients), whole(ResourceAnalytics)},
		ResourceCampaigns:     {whole(ResourceCampaigns), StatsKey(ResourceLeads)},
		ResourceSettings:      {whole(ResourceSettings)},
	}
}
