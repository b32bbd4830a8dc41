package srcom

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// variableIndex maps a category's variable ids to their display names and
// value labels.
type variableIndex map[string]variableEntry

type variableEntry struct {
	name   string
	labels map[string]string
}

// SubcategoryLabels renders a run's variable values as "Name: Label"
// pairs joined by ", ", using the category's variable listing. Pairs are
// ordered by variable id so output is stable. When the listing cannot be
// loaded the result is empty; unknown variables or values fall back to
// their raw ids.
func (c *Client) SubcategoryLabels(ctx context.Context, categoryID string, values map[string]string) string {
	if categoryID == "" || len(values) == 0 {
		return ""
	}

	idx := c.cachedVariables(ctx, categoryID)
	if idx == nil {
		return ""
	}

	varIDs := make([]string, 0, len(values))
	for id := range values {
		varIDs = append(varIDs, id)
	}
	sort.Strings(varIDs)

	parts := make([]string, 0, len(varIDs))
	for _, varID := range varIDs {
		valueID := values[varID]

		name := varID
		label := valueID
		if entry, ok := idx[varID]; ok {
			name = entry.name
			if l, ok := entry.labels[valueID]; ok {
				label = l
			}
		}
		parts = append(parts, fmt.Sprintf("%s: %s", name, label))
	}
	return strings.Join(parts, ", ")
}

// cachedVariables returns the category's variable index, loading it at
// most once per client. Failed loads are cached as nil so a flaky
// category does not get hammered.
func (c *Client) cachedVariables(ctx context.Context, categoryID string) variableIndex {
	c.varsMu.Lock()
	idx, ok := c.vars[categoryID]
	c.varsMu.Unlock()
	if ok {
		return idx
	}

	idx = c.loadVariables(ctx, categoryID)

	c.varsMu.Lock()
	c.vars[categoryID] = idx
	c.varsMu.Unlock()
	return idx
}

func (c *Client) loadVariables(ctx context.Context, categoryID string) variableIndex {
	url := fmt.Sprintf("%s/categories/%s/variables?max=200", c.baseURL, categoryID)
	data, err := c.getData(ctx, endpointVariables, url)
	if err != nil {
		return nil
	}

	var listing []variableJSON
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil
	}

	idx := make(variableIndex, len(listing))
	for _, v := range listing {
		if v.ID == "" {
			continue
		}

		name := v.Name
		if name == "" {
			name = v.ID
		}

		labels := make(map[string]string, len(v.Values.Values))
		for valueID, value := range v.Values.Values {
			label := value.Label
			if label == "" {
				label = valueID
			}
			labels[valueID] = label
		}

		idx[v.ID] = variableEntry{name: name, labels: labels}
	}
	return idx
}
