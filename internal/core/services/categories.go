package services

// EconomyServiceCategory is the service-table category the economy provider
// registers under. Third-party modules publish alternative providers here.
const EconomyServiceCategory = "economy"

// TreasuryOwnerID identifies the built-in provider's registrations.
const TreasuryOwnerID = "treasury"
