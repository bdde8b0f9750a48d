package feed

// Politician ties a tracked figure to a party and home state.
type Politician struct {
	Name  string
	Party string
	State string
}

var politicians = []Politician{
	{Name: "Bola Tinubu", Party: "APC", State: "Lagos"},
	{Name: "Atiku Abubakar", Party: "PDP", State: "Adamawa"},
	{Name: "Peter Obi", Party: "LP", State: "Anambra"},
	{Name: "Rabiu Kwankwaso", Party: "NNPP", State: "Kano"},
	{Name: "Nyesom Wike", Party: "PDP", State: "Rivers"},
	{Name: "Babajide Sanwo-Olu", Party: "APC", State: "Lagos"},
	{Name: "Godwin Obaseki", Party: "PDP", State: "Edo"},
	{Name: "Alex Otti", Party: "LP", State: "Abia"},
}

var parties = []string{"APC", "PDP", "LP", "NNPP"}

var states = []string{
	"Lagos", "Kano", "Rivers", "Anambra", "Kaduna", "Oyo",
	"Adamawa", "Edo", "Abia", "Enugu", "Borno", "FCT",
}

var platforms = []string{"twitter", "facebook", "instagram", "tiktok", "whatsapp"}

var topics = []string{
	"economy", "security", "fuel_subsidy", "education",
	"healthcare", "corruption", "infrastructure", "elections",
}

var ageBands = []string{"18-24", "25-34", "35-44", "45-54", "55+"}

var genders = []string{"male", "female"}

// Politicians returns the tracked politicians roster.
func Politicians() []Politician {
	out := make([]Politician, len(politicians))
	copy(out, politicians)
	return out
}

// Parties returns the tracked party codes.
func Parties() []string {
	out := make([]string, len(parties))
	copy(out, parties)
	return out
}
