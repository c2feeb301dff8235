package model

// All returns every persisted model for auto-migration.
func All() []interface{} {
	return []interface{}{
		&ForecastLine{},
		&InventorySnapshot{},
		&MonthConfig{},
		&ChannelOwner{},
		&MaterialDemand{},
	}
}
