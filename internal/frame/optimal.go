package frame

// UserSelection is the customer's choice on the product customization page.
type UserSelection struct {
	ColorName    string `json:"colorName"`
	MaterialType string `json:"materialType"`
	Thickness    string `json:"thickness"`
}

// OptimalConfig is the frame asset to render for a photo plus whether the
// photo must be rotated a quarter turn to fit it.
type OptimalConfig struct {
	AssetConfig
	NeedsRotation bool `json:"needsRotation"`
}

// GetOptimalFrameConfig picks the frame template for a photo of the given size.
// A portrait photo that lands on the square template needs no rotation.
func GetOptimalFrameConfig(dims PhotoDimensions, sel UserSelection) OptimalConfig {
	return ConfigForOrientation(DetectOrientation(dims), sel)
}

// ConfigForOrientation is GetOptimalFrameConfig for an already detected
// orientation.
func ConfigForOrientation(orientation PhotoOrientation, sel UserSelection) OptimalConfig {
	ratio := FindClosestAspectRatio(orientation.AspectRatio)

	return OptimalConfig{
		AssetConfig: AssetConfig{
			ColorName:    sel.ColorName,
			MaterialType: sel.MaterialType,
			Thickness:    sel.Thickness,
			AspectRatio:  ratio,
		},
		NeedsRotation: orientation.NeedsRotation && ratio != Ratio1x1,
	}
}
