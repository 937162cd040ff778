//go:build !integration

package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haven-labs/haven-cli/internal/model"
)

func TestImportCmd_Metadata(t *testing.T) {
	assert.Equal(t, "import", importCmd.Use)
	assert.NotEmpty(t, importCmd.Short)

	csvFlag := importCmd.Flags().Lookup("csv")
	require.NotNil(t, csvFlag)
}

func TestParseListingsCSV(t *testing.T) {
	in := strings.Join([]string{
		"Address,City,State,Zipcode,List_Price,Sqft,Bedrooms,Bathrooms,Year_Built,Days_On_Market,Property_Type",
		"123 Main St,Springfield,OH,45501,150000,1400,3,2,1965,12,single_family",
		"77 Pine Ave,Springfield,OH,45502,89500,,2,1,,45,condo_townhome",
	}, "\n")

	listings, skipped, err := parseListingsCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Len(t, listings, 2)

	first := listings[0]
	assert.Equal(t, "123 Main St", first.Address)
	assert.Equal(t, "45501", first.Zipcode)
	assert.Equal(t, 150_000.0, first.ListPrice)
	assert.Equal(t, 1965, first.YearBuilt)
	assert.Equal(t, 12.0, first.DaysOnMarket)
	assert.Equal(t, model.PropertySingleFamily, first.PropertyType)

	second := listings[1]
	assert.Equal(t, model.PropertyCondoTownhome, second.PropertyType)
	assert.Zero(t, second.Sqft)
	assert.Zero(t, second.YearBuilt)
}

func TestParseListingsCSV_SkipsBadRows(t *testing.T) {
	in := strings.Join([]string{
		"address,zipcode,list_price",
		",45501,150000",
		"123 Main St,,150000",
		"123 Main St,45501,0",
		"456 Oak St,45501,99000",
	}, "\n")

	listings, skipped, err := parseListingsCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 3, skipped)
	require.Len(t, listings, 1)
	assert.Equal(t, "456 Oak St", listings[0].Address)
}

func TestParseListingsCSV_MissingColumn(t *testing.T) {
	in := "address,city,list_price\n123 Main St,Springfield,150000\n"

	_, _, err := parseListingsCSV(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"zipcode"`)
}

func TestParseListingsCSV_DefaultsPropertyType(t *testing.T) {
	in := "address,zipcode,list_price\n123 Main St,45501,150000\n"

	listings, skipped, err := parseListingsCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, listings, 1)
	assert.Equal(t, model.PropertySingleFamily, listings[0].PropertyType)
}
