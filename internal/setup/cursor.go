package setup

func init() {
	RegisterAgentEnv(&configEnv{
		name:        "cursor",
		displayName: "Cursor",
		globalPath: func() (string, error) {
			return homePath(".cursor", "mcp.json")
		},
		projectPath: func() (string, error) {
			return cwdPath(".cursor", "mcp.json")
		},
	})
}
