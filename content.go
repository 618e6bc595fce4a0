package mindy

// A Category tags a content enumerant with the class it belongs to.
type Category byte

// Content categories
const (
	CatItem Category = iota
	CatLiquid
	CatUnit
	CatBlock
	CatTeam
)

var categoryNames = []string{"item", "liquid", "unit", "block", "team"}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "unknown"
}

// A Catalog is the injected table of content identifiers the simulation
// knows about. The core treats it as opaque data: content values are
// (category, ordinal) pairs, and the catalog supplies names and lookup
// by ordinal. Hosts may supply their own catalog to match whatever
// content set the front-end ships.
type Catalog struct {
	Items   []string
	Liquids []string
	Units   []string
	Blocks  []string
	Teams   []string

	byName map[string]Value
}

// DefaultCatalog returns a catalog covering the stock content set.
func DefaultCatalog() *Catalog {
	c := &Catalog{
		Items: []string{
			"copper", "lead", "metaglass", "graphite", "sand", "coal",
			"titanium", "thorium", "scrap", "silicon", "plastanium",
			"phase-fabric", "surge-alloy", "spore-pod", "blast-compound",
			"pyratite", "beryllium", "tungsten", "oxide", "carbide",
		},
		Liquids: []string{
			"water", "slag", "oil", "cryofluid", "neoplasm", "arkycite",
			"ozone", "hydrogen", "nitrogen", "cyanogen",
		},
		Units: []string{
			"dagger", "mace", "fortress", "scepter", "reign",
			"nova", "pulsar", "quasar", "vela", "corvus",
			"crawler", "atrax", "spiroct", "arkyid", "toxopid",
			"flare", "horizon", "zenith", "antumbra", "eclipse",
			"mono", "poly", "mega", "quad", "oct",
		},
		Blocks: []string{
			"micro-processor", "logic-processor", "hyper-processor",
			"world-processor", "memory-cell", "memory-bank",
			"logic-display", "large-logic-display", "message", "switch",
			"sorter",
		},
		Teams: []string{
			"derelict", "sharded", "crux", "malis", "green", "blue",
		},
	}
	c.index()
	return c
}

// index builds the @name lookup map. Called once per catalog; hosts
// constructing a custom catalog call it through NewSim.
func (c *Catalog) index() {
	c.byName = make(map[string]Value)
	add := func(cat Category, names []string) {
		for i, n := range names {
			c.byName[n] = ContentVal(cat, i)
		}
	}
	add(CatItem, c.Items)
	add(CatLiquid, c.Liquids)
	add(CatUnit, c.Units)
	add(CatBlock, c.Blocks)
	add(CatTeam, c.Teams)
}

// ByName resolves an @identifier to a content value. The second result
// is false if the catalog has no such name.
func (c *Catalog) ByName(name string) (Value, bool) {
	v, ok := c.byName[name]
	return v, ok
}

// Lookup returns the content with the given ordinal within a category,
// or null if the ordinal is out of range. This backs the lookup opcode.
func (c *Catalog) Lookup(cat Category, ord int) Value {
	if ord < 0 || ord >= c.Count(cat) {
		return Null
	}
	return ContentVal(cat, ord)
}

// Count returns the number of entries in a category.
func (c *Catalog) Count(cat Category) int {
	return len(c.names(cat))
}

// Name returns the identifier of a content enumerant, or "null" if the
// ordinal is out of range.
func (c *Catalog) Name(cat Category, ord int) string {
	names := c.names(cat)
	if ord < 0 || ord >= len(names) {
		return "null"
	}
	return names[ord]
}

func (c *Catalog) names(cat Category) []string {
	switch cat {
	case CatItem:
		return c.Items
	case CatLiquid:
		return c.Liquids
	case CatUnit:
		return c.Units
	case CatBlock:
		return c.Blocks
	case CatTeam:
		return c.Teams
	default:
		return nil
	}
}
