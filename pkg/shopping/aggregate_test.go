package shopping

import (
	"Foodgram-Backend/domain"
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"
)

var (
	recipeA = domain.CartRecipe{
		ID:   1,
		Name: "Pancakes",
		Ingredients: []domain.CartIngredient{
			{Name: "Salt", MeasurementUnit: "g", Amount: 10},
		},
	}
	recipeB = domain.CartRecipe{
		ID:   2,
		Name: "Cookies",
		Ingredients: []domain.CartIngredient{
			{Name: "Sugar", MeasurementUnit: "g", Amount: 20},
			{Name: "Salt", MeasurementUnit: "g", Amount: 5},
		},
	}
)

func TestAggregateSumsByNameAndUnit(t *testing.T) {
	got := Aggregate([]domain.CartRecipe{recipeA, recipeB})
	want := []domain.ShoppingItem{
		{Name: "Salt", MeasurementUnit: "g", TotalAmount: 15},
		{Name: "Sugar", MeasurementUnit: "g", TotalAmount: 20},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Aggregate = %+v, want %+v", got, want)
	}
}

func TestAggregateIsOrderIndependent(t *testing.T) {
	ab := Aggregate([]domain.CartRecipe{recipeA, recipeB})
	ba := Aggregate([]domain.CartRecipe{recipeB, recipeA})
	if !reflect.DeepEqual(ab, ba) {
		t.Errorf("{A,B} = %+v, {B,A} = %+v", ab, ba)
	}

	// summing the separate lists by (name, unit) gives the combined list
	sum := map[[2]string]int64{}
	for _, part := range [][]domain.ShoppingItem{Aggregate([]domain.CartRecipe{recipeA}), Aggregate([]domain.CartRecipe{recipeB})} {
		for _, item := range part {
			sum[[2]string{item.Name, item.MeasurementUnit}] += item.TotalAmount
		}
	}
	if len(sum) != len(ab) {
		t.Fatalf("separate sums have %d lines, combined has %d", len(sum), len(ab))
	}
	for _, item := range ab {
		if sum[[2]string{item.Name, item.MeasurementUnit}] != item.TotalAmount {
			t.Errorf("%s: combined %d, separate %d", item.Name, item.TotalAmount, sum[[2]string{item.Name, item.MeasurementUnit}])
		}
	}
}

func TestAggregateKeepsUnitsApart(t *testing.T) {
	got := Aggregate([]domain.CartRecipe{{
		Ingredients: []domain.CartIngredient{
			{Name: "Milk", MeasurementUnit: "ml", Amount: 200},
			{Name: "Milk", MeasurementUnit: "cup", Amount: 1},
			{Name: "Eggs", MeasurementUnit: "pcs", Amount: 2},
		},
	}})
	want := []domain.ShoppingItem{
		{Name: "Eggs", MeasurementUnit: "pcs", TotalAmount: 2},
		{Name: "Milk", MeasurementUnit: "cup", TotalAmount: 1},
		{Name: "Milk", MeasurementUnit: "ml", TotalAmount: 200},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Aggregate = %+v, want %+v", got, want)
	}
}

func TestAggregateEmptyCart(t *testing.T) {
	got := Aggregate(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("Aggregate(nil) = %#v, want empty slice", got)
	}
}

func TestAggregateWideAccumulator(t *testing.T) {
	big := domain.CartIngredient{Name: "Flour", MeasurementUnit: "g", Amount: 1 << 30}
	recipes := make([]domain.CartRecipe, 4)
	for i := range recipes {
		recipes[i] = domain.CartRecipe{Ingredients: []domain.CartIngredient{big}}
	}

	got := Aggregate(recipes)
	if got[0].TotalAmount != 4*(1<<30) {
		t.Errorf("total = %d, want %d", got[0].TotalAmount, int64(4*(1<<30)))
	}
}

func TestRender(t *testing.T) {
	list := domain.ShoppingList{
		Recipes: []domain.RecipeShort{{ID: 1, Name: "Pancakes"}, {ID: 2, Name: "Cookies"}},
		Items:   Aggregate([]domain.CartRecipe{recipeA, recipeB}),
		Date:    time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	if err := Render(&buf, list); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{"2026-10-18", "* Pancakes", "* Cookies", "1. Salt (g): 15", "2. Sugar (g): 20"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Salt") > strings.Index(out, "Sugar") {
		t.Errorf("lines not ordered by name:\n%s", out)
	}
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, domain.ShoppingList{Items: Aggregate(nil), Date: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Your shopping cart is empty.") {
		t.Errorf("output = %q", buf.String())
	}
}
