package drops

// TankSkin is one collectible tank in the drop pool.
type TankSkin struct {
	ID     string
	Name   string
	Rarity Rarity
}

// scrapByRarity is the consolation currency for duplicate drops.
var scrapByRarity = map[Rarity]int{
	Common:    10,
	Uncommon:  25,
	Rare:      75,
	Epic:      200,
	Legendary: 500,
}

// ScrapValue returns the duplicate scrap award for a rarity.
func ScrapValue(r Rarity) int { return scrapByRarity[r] }

// DefaultCatalog is the shipped tank pool.
func DefaultCatalog() []TankSkin {
	return []TankSkin{
		{ID: "rusty", Name: "Rusty", Rarity: Common},
		{ID: "olive", Name: "Olive Drab", Rarity: Common},
		{ID: "sandy", Name: "Sandstorm", Rarity: Common},
		{ID: "slate", Name: "Slate", Rarity: Common},
		{ID: "brick", Name: "Brick", Rarity: Common},
		{ID: "moss", Name: "Mossback", Rarity: Common},

		{ID: "cobalt", Name: "Cobalt", Rarity: Uncommon},
		{ID: "viper", Name: "Viper", Rarity: Uncommon},
		{ID: "dune", Name: "Dune Runner", Rarity: Uncommon},
		{ID: "frost", Name: "Frostbite", Rarity: Uncommon},
		{ID: "ember", Name: "Ember", Rarity: Uncommon},

		{ID: "warden", Name: "Warden", Rarity: Rare},
		{ID: "talon", Name: "Talon", Rarity: Rare},
		{ID: "ironclad", Name: "Ironclad", Rarity: Rare},
		{ID: "spectre", Name: "Spectre", Rarity: Rare},

		{ID: "tempest", Name: "Tempest", Rarity: Epic},
		{ID: "juggernaut", Name: "Juggernaut", Rarity: Epic},
		{ID: "aurora", Name: "Aurora", Rarity: Epic},

		{ID: "leviathan", Name: "Leviathan", Rarity: Legendary},
		{ID: "midnight", Name: "Midnight Sun", Rarity: Legendary},
	}
}

// poolByRarity groups a catalog by tier.
func poolByRarity(catalog []TankSkin) map[Rarity][]TankSkin {
	out := make(map[Rarity][]TankSkin, rarityCount)
	for _, t := range catalog {
		out[t.Rarity] = append(out[t.Rarity], t)
	}
	return out
}
