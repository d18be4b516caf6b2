package hmm

// Scenario bundles a model with a sample observation sequence for demos.
type Scenario struct {
	Name         string
	Description  string
	Model        *Model
	Observations []string
}

// IceCream is Eisner's hot/cold weather model: the hidden weather of a day
// emits how many ice creams (V1..V3) were eaten.
func IceCream() Scenario {
	return Scenario{
		Name:        "IceCream",
		Description: "hidden Hot/Cold days emitting 1-3 ice creams",
		Model: MustNewModel(
			[]string{"Hot", "Cold"},
			[]string{"V1", "V2", "V3"},
			[]float64{0.6, 0.4},
			[][]float64{
				{0.7, 0.3},
				{0.4, 0.6},
			},
			[][]float64{
				{0.1, 0.4, 0.5},
				{0.7, 0.2, 0.1},
			},
		),
		Observations: []string{"V1", "V2", "V3"},
	}
}

// Weather is the Rainy/Sunny model where a friend's daily activity is
// observed instead of the weather.
func Weather() Scenario {
	return Scenario{
		Name:        "Weather",
		Description: "hidden Rainy/Sunny days emitting walk/shop/clean activities",
		Model: MustNewModel(
			[]string{"Rainy", "Sunny"},
			[]string{"walk", "shop", "clean"},
			[]float64{0.6, 0.4},
			[][]float64{
				{0.7, 0.3},
				{0.4, 0.6},
			},
			[][]float64{
				{0.1, 0.4, 0.5},
				{0.6, 0.3, 0.1},
			},
		),
		Observations: []string{"walk", "shop", "clean"},
	}
}

// Scenarios lists the built-in scenarios in display order.
func Scenarios() []Scenario {
	return []Scenario{IceCream(), Weather()}
}
