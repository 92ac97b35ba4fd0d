package catalog

import (
	"time"

	"github.com/onnwee/stand/internal/alignment"
	"github.com/onnwee/stand/internal/geo"
)

func testSnapshot() *Snapshot {
	return &Snapshot{
		Brands: []alignment.Brand{
			{
				Profile: alignment.Profile{ID: "b-1", Name: "Patagonia", Category: "Fashion"},
				ValueAlignments: []alignment.ValueAlignment{
					{ValueID: "climate", Position: 1, IsSupport: true},
				},
			},
			{
				Profile: alignment.Profile{ID: "b-2", Name: "Exxon", Category: "Energy"},
				ValueAlignments: []alignment.ValueAlignment{
					{ValueID: "climate", Position: 1, IsSupport: false},
				},
			},
			{Profile: alignment.Profile{ID: "b-3", Name: "Acme"}},
		},
		Businesses: []alignment.Business{
			{
				Profile: alignment.Profile{ID: "biz-1", Name: "Corner Cafe", Category: "Food"},
				Causes:  []alignment.Cause{{ID: "climate", Type: alignment.Support}},
				Locations: []geo.Location{
					{Address: "1 Main St", Coordinates: &geo.Point{Lat: 40.7128, Lng: -74.0060}, Primary: true},
				},
			},
		},
		Places: []alignment.PlaceBusiness{
			{
				Profile: alignment.Profile{ID: "place-1", Name: "Book Nook"},
				PlaceID: "ChIJ123",
				Address: "2 Side St",
				Point:   &geo.Point{Lat: 40.72, Lng: -74.0},
			},
		},
		RankLists: alignment.RankLists{
			"labor": {Support: []string{"Acme"}, Oppose: []string{"Exxon"}},
		},
		LoadedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}
