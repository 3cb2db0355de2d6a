package emotion

import "fmt"

// Contract is the class ordering a model artifact was trained with. It ships
// next to the artifact so the serving-side table can be checked against it.
type Contract struct {
	Version string   `json:"version"`
	Classes []string `json:"classes"`
}

// Validate fails unless the classes match Labels exactly, in order.
func (c Contract) Validate() error {
	if len(c.Classes) != NumClasses {
		return fmt.Errorf("model declares %d classes, want %d", len(c.Classes), NumClasses)
	}
	for i, name := range c.Classes {
		if Label(name) != Labels[i] {
			return fmt.Errorf("class %d is %q, want %q", i, name, Labels[i])
		}
	}
	return nil
}
