// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package matching

import "github.com/jcodagnone/addrlookup/model"

// ClusterByDistance groups records whose points lie within km of any member
// of the group. Records without valid coordinates are left out. Groups keep
// the input order of their first member.
func ClusterByDistance(records []*model.AddressRecord, km float64) [][]*model.AddressRecord {
	located := make([]*model.AddressRecord, 0, len(records))
	for _, r := range records {
		if r != nil && r.Point.Valid() {
			located = append(located, r)
		}
	}

	clusters := make([][]*model.AddressRecord, 0, len(located))
	visited := make([]bool, len(located))

	for i, r1 := range located {
		if visited[i] {
			continue
		}

		cluster := []*model.AddressRecord{r1}
		visited[i] = true

		// members appended during the scan are compared too
		for m := 0; m < len(cluster); m++ {
			for j, r2 := range located {
				if visited[j] {
					continue
				}

				if cluster[m].Point.DistanceKm(r2.Point) <= km {
					cluster = append(cluster, r2)
					visited[j] = true
				}
			}
		}

		clusters = append(clusters, cluster)
	}

	return clusters
}
