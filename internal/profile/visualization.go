package profile

type Thickness struct {
	First  float64 `json:"first" mapstructure:"first" validate:"gt=0"`
	Second float64 `json:"second" mapstructure:"second" validate:"gt=0"`
	Third  float64 `json:"third" mapstructure:"third" validate:"gt=0"`
}

type Opacity struct {
	Ply1 float64 `json:"ply1" mapstructure:"ply1" validate:"gte=0,lte=1"`
	Ply2 float64 `json:"ply2" mapstructure:"ply2" validate:"gte=0,lte=1"`
	Ply3 float64 `json:"ply3" mapstructure:"ply3" validate:"gte=0,lte=1"`
}

type ArrowStyle struct {
	Thickness Thickness `json:"thickness" mapstructure:"thickness"`
	Opacity   Opacity   `json:"opacity" mapstructure:"opacity"`
}

// Intensity bounds the overlay alpha band
type Intensity struct {
	Min           float64 `json:"min" mapstructure:"min" validate:"gte=0,lte=1"`
	Max           float64 `json:"max" mapstructure:"max" validate:"gte=0,lte=1,gtefield=Min"`
	PlyMultiplier float64 `json:"plyMultiplier" mapstructure:"plyMultiplier" validate:"gte=0"`
}

type Visualization struct {
	Arrows  ArrowStyle `json:"arrows" mapstructure:"arrows"`
	Squares Intensity  `json:"squares" mapstructure:"squares"`
}

func DefaultVisualization() Visualization {
	return Visualization{
		Arrows: ArrowStyle{
			Thickness: Thickness{First: 15, Second: 7.5, Third: 3.75},
			Opacity:   Opacity{Ply1: 0.8, Ply2: 0.6, Ply3: 0.4},
		},
		Squares: Intensity{Min: 0.1, Max: 0.8, PlyMultiplier: 0.1},
	}
}

func (v Visualization) Validate() error {
	return validate.Struct(v)
}
