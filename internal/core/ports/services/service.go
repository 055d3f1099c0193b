package services

// ServiceContainer bundles the service facades handed to the HTTP layer.
type ServiceContainer struct {
	Currency    CurrencyRegistrySvcFacade
	Store       LedgerStoreSvcFacade
	Economy     EconomySvcFacade
	Session     SessionSvcFacade
	Diagnostics DiagnosticsSvcFacade
}
