package event

// template is an entry in one of the fixed event pools. Emitted events clone
// a template and add jitter plus a unique runtime id.
type template struct {
	ID            string
	Type          Type
	Title         string
	BaseImpactPct float64
	Details       string
}

var macroPool = []template{
	{ID: "macro-1", Type: TypeMacro, Title: "Fed hikes rates by 25 bps", BaseImpactPct: -0.012},
	{ID: "macro-2", Type: TypeMacro, Title: "CPI cools below expectations", BaseImpactPct: 0.015},
	{ID: "macro-3", Type: TypeMacro, Title: "Oil jumps on OPEC+ cuts", BaseImpactPct: 0.009},
	{ID: "macro-4", Type: TypeMacro, Title: "Unemployment rate drops to 3.5%", BaseImpactPct: 0.011},
	{ID: "macro-5", Type: TypeMacro, Title: "GDP growth exceeds forecasts", BaseImpactPct: 0.013},
	{ID: "macro-6", Type: TypeMacro, Title: "Trade deficit widens unexpectedly", BaseImpactPct: -0.010},
	{ID: "macro-7", Type: TypeMacro, Title: "Housing starts surge 15%", BaseImpactPct: 0.008},
	{ID: "macro-8", Type: TypeMacro, Title: "Retail sales decline for third month", BaseImpactPct: -0.009},
	{ID: "macro-9", Type: TypeMacro, Title: "Manufacturing PMI hits 18-month high", BaseImpactPct: 0.012},
	{ID: "macro-10", Type: TypeMacro, Title: "Dollar strengthens against major currencies", BaseImpactPct: -0.007},
	{ID: "macro-11", Type: TypeMacro, Title: "Consumer confidence index plummets", BaseImpactPct: -0.011},
	{ID: "macro-12", Type: TypeMacro, Title: "Central bank signals dovish pivot", BaseImpactPct: 0.014},
	{ID: "macro-13", Type: TypeMacro, Title: "Bond yields spike on inflation fears", BaseImpactPct: -0.013},
	{ID: "macro-14", Type: TypeMacro, Title: "Jobless claims hit record low", BaseImpactPct: 0.010},
	{ID: "macro-15", Type: TypeMacro, Title: "Industrial production falls 2.3%", BaseImpactPct: -0.012},
}

var microPool = []template{
	{ID: "micro-1", Type: TypeMicro, Title: "TechCo beats; raises guidance", BaseImpactPct: 0.035},
	{ID: "micro-2", Type: TypeMicro, Title: "BioHealth drug fails Phase 3", BaseImpactPct: -0.028},
	{ID: "micro-3", Type: TypeMicro, Title: "AutoCo announces $5B buyback", BaseImpactPct: 0.02},
	{ID: "micro-4", Type: TypeMicro, Title: "RetailGiant misses revenue targets", BaseImpactPct: -0.022},
	{ID: "micro-5", Type: TypeMicro, Title: "EnergyCorp discovers major oil field", BaseImpactPct: 0.025},
	{ID: "micro-6", Type: TypeMicro, Title: "BankInc reports record profits", BaseImpactPct: 0.018},
	{ID: "micro-7", Type: TypeMicro, Title: "PharmaCo gets FDA approval", BaseImpactPct: 0.030},
	{ID: "micro-8", Type: TypeMicro, Title: "Airlines face pilot shortage crisis", BaseImpactPct: -0.015},
	{ID: "micro-9", Type: TypeMicro, Title: "StreamCo adds 10M subscribers", BaseImpactPct: 0.022},
	{ID: "micro-10", Type: TypeMicro, Title: "ChipMaker announces factory expansion", BaseImpactPct: 0.019},
	{ID: "micro-11", Type: TypeMicro, Title: "FoodChain faces supply chain disruption", BaseImpactPct: -0.016},
	{ID: "micro-12", Type: TypeMicro, Title: "CloudCo signs $2B enterprise deal", BaseImpactPct: 0.027},
	{ID: "micro-13", Type: TypeMicro, Title: "AutoMaker recalls 500K vehicles", BaseImpactPct: -0.024},
	{ID: "micro-14", Type: TypeMicro, Title: "SocialMedia launches new ad platform", BaseImpactPct: 0.021},
	{ID: "micro-15", Type: TypeMicro, Title: "ShippingCo reports record losses", BaseImpactPct: -0.020},
	{ID: "micro-16", Type: TypeMicro, Title: "GamingCo releases blockbuster title", BaseImpactPct: 0.023},
	{ID: "micro-17", Type: TypeMicro, Title: "MiningCorp faces environmental lawsuit", BaseImpactPct: -0.017},
	{ID: "micro-18", Type: TypeMicro, Title: "EVMaker doubles production capacity", BaseImpactPct: 0.026},
}

var blackSwanPool = []template{
	{ID: "bs-1", Type: TypeBlackSwan, Title: "Flash Crash: Liquidity Vacuum", BaseImpactPct: -0.12,
		Details: "Severe market dislocation detected. Liquidity has evaporated across major exchanges."},
	{ID: "bs-2", Type: TypeBlackSwan, Title: "Geopolitical Shock: Sanctions Escalation", BaseImpactPct: -0.08,
		Details: "Major geopolitical event triggers widespread market uncertainty."},
	{ID: "bs-3", Type: TypeBlackSwan, Title: "Exchange Outage: Price Discovery Stalls", BaseImpactPct: -0.06,
		Details: "Critical exchange infrastructure failure disrupts trading operations."},
	{ID: "bs-4", Type: TypeBlackSwan, Title: "Cyber Attack: Major Bank Breach", BaseImpactPct: -0.10,
		Details: "Sophisticated cyber attack compromises major financial institution's systems."},
	{ID: "bs-5", Type: TypeBlackSwan, Title: "Natural Disaster: Supply Chain Collapse", BaseImpactPct: -0.09,
		Details: "Catastrophic natural disaster disrupts global supply chains."},
	{ID: "bs-6", Type: TypeBlackSwan, Title: "Regulatory Bombshell: Industry Shakeup", BaseImpactPct: -0.11,
		Details: "Unexpected regulatory changes threaten entire industry sectors."},
	{ID: "bs-7", Type: TypeBlackSwan, Title: "Currency Crisis: Emerging Market Crash", BaseImpactPct: -0.07,
		Details: "Major emerging market currency collapses, triggering global contagion."},
	{ID: "bs-8", Type: TypeBlackSwan, Title: "Commodity Shock: Resource Shortage", BaseImpactPct: -0.085,
		Details: "Critical resource shortage creates widespread economic disruption."},
}
