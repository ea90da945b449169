package categorize

// exactRule maps a normalized merchant to a category by name with full
// confidence. Category names are resolved case-insensitively against the
// caller's catalog; a rule whose category the caller does not own is skipped.
type exactRule struct {
	CategoryName string
}

// keywordRule assigns a category when the normalized merchant (or, at
// reduced confidence, the description) contains any of its keywords.
type keywordRule struct {
	CategoryName string
	Confidence   int
	Keywords     []string
}

// exactMerchantRules match the whole normalized merchant. Confidence 100.
var exactMerchantRules = map[string]exactRule{
	"starbucks":   {CategoryName: "Dining"},
	"mcdonald's":  {CategoryName: "Dining"},
	"chipotle":    {CategoryName: "Dining"},
	"dunkin":      {CategoryName: "Dining"},
	"amazon.com":  {CategoryName: "Shopping"},
	"amazon":      {CategoryName: "Shopping"},
	"target":      {CategoryName: "Shopping"},
	"walmart":     {CategoryName: "Groceries"},
	"costco":      {CategoryName: "Groceries"},
	"trader joe's": {CategoryName: "Groceries"},
	"whole foods": {CategoryName: "Groceries"},
	"netflix":     {CategoryName: "Entertainment"},
	"netflix.com": {CategoryName: "Entertainment"},
	"spotify":     {CategoryName: "Entertainment"},
	"hulu":        {CategoryName: "Entertainment"},
	"uber":        {CategoryName: "Transportation"},
	"lyft":        {CategoryName: "Transportation"},
	"shell":       {CategoryName: "Transportation"},
	"chevron":     {CategoryName: "Transportation"},
	"cvs":         {CategoryName: "Health"},
	"walgreens":   {CategoryName: "Health"},
	"airbnb":      {CategoryName: "Travel"},
	"delta":       {CategoryName: "Travel"},
}

// keywordRules are checked in declaration order; within a rule, keywords are
// checked in order and the first hit wins the whole pass.
var keywordRules = []keywordRule{
	{
		CategoryName: "Dining",
		Confidence:   85,
		Keywords: []string{
			"restaurant", "coffee", "cafe", "pizza", "burger", "taco",
			"sushi", "grill", "diner", "bakery", "deli", "doordash",
			"grubhub", "ubereats", "starbucks", "mcdonald", "wendy",
			"subway", "domino", "kfc", "dunkin",
		},
	},
	{
		CategoryName: "Groceries",
		Confidence:   85,
		Keywords: []string{
			"grocery", "supermarket", "market", "kroger", "safeway",
			"aldi", "publix", "wegmans", "trader joe", "whole foods",
			"food lion", "costco", "walmart",
		},
	},
	{
		CategoryName: "Transportation",
		Confidence:   85,
		Keywords: []string{
			"uber", "lyft", "taxi", "gas", "fuel", "shell", "chevron",
			"exxon", "mobil", "parking", "transit", "metro", "toll",
		},
	},
	{
		CategoryName: "Shopping",
		Confidence:   85,
		Keywords: []string{
			"amazon", "target", "ebay", "etsy", "best buy", "nike",
			"macy", "nordstrom", "ikea", "home depot", "lowes",
		},
	},
	{
		CategoryName: "Entertainment",
		Confidence:   85,
		Keywords: []string{
			"netflix", "spotify", "hulu", "disney", "cinema", "theater",
			"theatre", "steam", "playstation", "xbox", "nintendo",
			"concert", "ticketmaster",
		},
	},
	{
		CategoryName: "Utilities",
		Confidence:   85,
		Keywords: []string{
			"electric", "water", "sewer", "internet", "comcast",
			"xfinity", "verizon", "at&t", "t-mobile", "utility",
			"power", "energy",
		},
	},
	{
		CategoryName: "Housing",
		Confidence:   85,
		Keywords: []string{
			"rent", "mortgage", "hoa", "landlord", "property mgmt",
			"apartment",
		},
	},
	{
		CategoryName: "Health",
		Confidence:   85,
		Keywords: []string{
			"pharmacy", "cvs", "walgreens", "doctor", "dental",
			"clinic", "hospital", "gym", "fitness", "optical",
		},
	},
	{
		CategoryName: "Travel",
		Confidence:   85,
		Keywords: []string{
			"airline", "airways", "hotel", "motel", "airbnb", "hostel",
			"delta", "united", "southwest", "marriott", "hilton",
			"expedia", "booking.com",
		},
	},
	{
		CategoryName: "Income",
		Confidence:   85,
		Keywords: []string{
			"payroll", "direct deposit", "direct dep", "salary",
			"paycheck", "employer",
		},
	},
	{
		CategoryName: "Fees",
		Confidence:   85,
		Keywords: []string{
			"overdraft", "service fee", "monthly fee", "atm fee",
			"interest charge", "late fee", "nsf",
		},
	},
}
