package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions for the TerraShield MCP server.
// Descriptions are what the LLM reads to decide which tool to use.

var ToolQuotePremium = mcp.NewTool("quote_premium",
	mcp.WithDescription(
		"Calculate a parametric crop insurance premium for a farm location. "+
			"Returns the risk multiplier, final premium in wei, risk factors, and "+
			"confidence score. Uses AI underwriting when available, with a "+
			"rule-based fallback."),
	mcp.WithString("location",
		mcp.Required(),
		mcp.Description("Farm location (e.g. 'Jaisalmer, Rajasthan' or 'Punjab')")),
	mcp.WithString("weather_type",
		mcp.Description("Hazard to insure against: 'drought', 'excessive_rainfall', 'heat_wave', 'hailstorm', 'frost', or 'multi_hazard'")),
	mcp.WithString("baseline_premium",
		mcp.Description("Baseline premium in ETH before risk adjustment (e.g. '0.01'). Omit to use the server's configured default.")),
	mcp.WithString("strategy",
		mcp.Description("Force a pricing strategy: 'rules' skips the AI underwriter"),
		mcp.Enum("rules", "ai")),
)

var ToolAssessRisk = mcp.NewTool("assess_risk",
	mcp.WithDescription(
		"Look up the risk profile for a known farm location. "+
			"Shows the risk score (0-100), drought/hail/frost risk levels, "+
			"baseline rainfall, and the recommended premium."),
	mcp.WithString("location",
		mcp.Required(),
		mcp.Description("Farm location (e.g. 'Kerala' or 'Mumbai, Maharashtra')")),
)

var ToolListLocations = mcp.NewTool("list_locations",
	mcp.WithDescription(
		"List every location in the underwriting risk catalog. "+
			"Quotes for locations outside this list use conservative flat multipliers."),
)

var ToolWeatherLookup = mcp.NewTool("weather_lookup",
	mcp.WithDescription(
		"Fetch current weather conditions for a farm location: rainfall, "+
			"temperature, and wind speed. This is the same data the oracle uses "+
			"to decide parametric payouts."),
	mcp.WithString("location",
		mcp.Required(),
		mcp.Description("Farm location (e.g. 'Jaisalmer, Rajasthan')")),
)
