package process

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/kyma-project/cloud-pricing-collector/pkg/resource"
)

// PrintSummary renders the per-provider counts and failures of a run as a table.
func PrintSummary(w io.Writer, summary Summary) {
	providers := make([]resource.Provider, 0, len(summary.ByProvider)+len(summary.Errors))
	for provider := range summary.ByProvider {
		providers = append(providers, provider)
	}

	for provider := range summary.Errors {
		if _, found := summary.ByProvider[provider]; !found {
			providers = append(providers, provider)
		}
	}

	slices.Sort(providers)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Provider", "Instances", "Error"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, provider := range providers {
		table.Append([]string{
			string(provider),
			strconv.Itoa(summary.ByProvider[provider]),
			summary.Errors[provider],
		})
	}

	table.SetFooter([]string{
		"TOTAL",
		strconv.Itoa(summary.TotalInstances),
		fmt.Sprintf("USD %.4f - %.4f / hour", summary.PriceRange.Min, summary.PriceRange.Max),
	})
	table.SetFooterAlignment(tablewriter.ALIGN_LEFT)
	table.Render()

	types := make([]resource.Type, 0, len(summary.ByType))
	for t := range summary.ByType {
		types = append(types, t)
	}

	slices.Sort(types)

	typeTable := tablewriter.NewWriter(w)
	typeTable.SetHeader([]string{"Type", "Instances"})
	typeTable.SetBorder(false)
	typeTable.SetColumnSeparator(" ")

	for _, t := range types {
		typeTable.Append([]string{string(t), strconv.Itoa(summary.ByType[t])})
	}

	typeTable.Render()
}
