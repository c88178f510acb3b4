package fonts_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/pageprint/pkg/fonts"
)

func ExampleResolver_Resolve() {
	catalog := fonts.NewStatic(map[string][]string{
		"Arimo": {"Regular", "Bold"},
		"Inter": {"Regular", "Medium", "SemiBold", "Bold"},
	})
	r := fonts.NewResolver(catalog, nil)

	res, _ := r.Resolve(context.Background(), []string{"Helvetica", "Arial", "sans-serif"}, 700, false)
	fmt.Println(res.Family, res.Style.Name, res.Via)
	// Output:
	// Arimo Bold alias
}

func ExampleWeightName() {
	for _, w := range []int{400, 500, 700} {
		fmt.Println(w, fonts.WeightName(w))
	}
	// Output:
	// 400 Regular
	// 500 Medium
	// 700 Bold
}
