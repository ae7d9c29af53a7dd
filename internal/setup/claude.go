package setup

func init() {
	RegisterAgentEnv(&configEnv{
		name:        "claude",
		displayName: "Claude Code",
		globalPath: func() (string, error) {
			return homePath(".claude.json")
		},
		projectPath: func() (string, error) {
			return cwdPath(".mcp.json")
		},
	})
}
