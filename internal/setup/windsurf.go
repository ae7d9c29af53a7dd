package setup

func init() {
	RegisterAgentEnv(&configEnv{
		name:        "windsurf",
		displayName: "Windsurf",
		globalPath: func() (string, error) {
			return homePath(".codeium", "windsurf", "mcp_config.json")
		},
		// Windsurf reads MCP servers from the global config only.
	})
}
