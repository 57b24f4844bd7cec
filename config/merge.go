package config

// mergeConfigs merges override configuration into base
func mergeConfigs(base, override *Config) *Config {
	result := *base

	if override.Version != "" {
		result.Version = override.Version
	}
	if override.Index != "" {
		result.Index = override.Index
	}

	result.Settings = mergeSettings(result.Settings, override.Settings)

	// A widget list in an override replaces the base list.
	if len(override.Widgets) > 0 {
		result.Widgets = override.Widgets
	}

	if override.Extensions != nil {
		merged := make(map[string]interface{}, len(result.Extensions)+len(override.Extensions))
		for key, value := range result.Extensions {
			merged[key] = value
		}
		for key, value := range override.Extensions {
			// If both base and override have the same extension key, merge them
			if baseValue, exists := merged[key]; exists {
				if baseMap, baseOk := baseValue.(map[string]interface{}); baseOk {
					if overrideMap, overrideOk := value.(map[string]interface{}); overrideOk {
						mergedMap := make(map[string]interface{})
						for k, v := range baseMap {
							mergedMap[k] = v
						}
						for k, v := range overrideMap {
							mergedMap[k] = v
						}
						merged[key] = mergedMap
						continue
					}
				}
			}
			merged[key] = value
		}
		result.Extensions = merged
	}

	return &result
}

func mergeSettings(base, override Settings) Settings {
	result := base

	if override.StalledSearchDelay != "" {
		result.StalledSearchDelay = override.StalledSearchDelay
	}
	if override.SchedulerDelay != "" {
		result.SchedulerDelay = override.SchedulerDelay
	}
	if override.MaxFacetHits != 0 {
		result.MaxFacetHits = override.MaxFacetHits
	}
	if override.StateFile != "" {
		result.StateFile = override.StateFile
	}
	if override.Dataset != "" {
		result.Dataset = override.Dataset
	}
	if override.ConfigDebounceMs != 0 {
		result.ConfigDebounceMs = override.ConfigDebounceMs
	}
	if override.Server != nil {
		server := ServerConfig{}
		if base.Server != nil {
			server = *base.Server
		}
		if override.Server.Addr != "" {
			server.Addr = override.Server.Addr
		}
		if len(override.Server.AllowedOrigins) > 0 {
			server.AllowedOrigins = override.Server.AllowedOrigins
		}
		result.Server = &server
	}

	return result
}
