package feed

import (
	"encoding/xml"
	"fmt"

	"feedsyncd/models"
)

// ParseError means the feed document itself is unusable. Fatal to the
// run, unlike per-record problems which surface downstream.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse feed: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Normalizer turns a raw feed payload into normalized records. One
// implementation per feed format, selected by the feed configuration.
type Normalizer interface {
	Normalize(data []byte) ([]Record, error)
}

// NormalizerFor returns the normalizer for a configured feed type.
func NormalizerFor(feedType string) (Normalizer, error) {
	switch feedType {
	case models.FeedTypeXML:
		return &XMLNormalizer{}, nil
	case models.FeedTypeJSON, models.FeedTypeAPI:
		return nil, fmt.Errorf("feed type %q not implemented", feedType)
	default:
		return nil, fmt.Errorf("unknown feed type %q", feedType)
	}
}

// XMLNormalizer parses the XML listing feed format.
type XMLNormalizer struct{}

func (n *XMLNormalizer) Normalize(data []byte) ([]Record, error) {
	var doc xmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Err: err}
	}

	records := make([]Record, 0, len(doc.Listings))
	for _, l := range doc.Listings {
		records = append(records, normalizeListing(&l))
	}
	return records, nil
}

func normalizeListing(l *xmlListing) Record {
	rec := Record{
		MLSID:          cleanString(l.ListingDetails.MLSID),
		MLSInternalID:  cleanString(l.ListingDetails.ProviderListingID),
		MLSBoard:       cleanString(l.ListingDetails.MLSName),
		Status:         cleanString(l.ListingDetails.Status),
		Price:          parseFloat(l.ListingDetails.Price),
		ListingURL:     cleanString(l.ListingDetails.ListingURL),
		VirtualTourURL: cleanString(l.ListingDetails.VirtualTourURL),

		Address:    cleanString(l.Location.StreetAddress),
		UnitNumber: cleanString(l.Location.UnitNumber),
		City:       cleanString(l.Location.City),
		State:      cleanString(l.Location.State),
		Zip:        cleanString(l.Location.Zip),
		Lat:        parseFloat(l.Location.Lat),
		Lng:        parseFloat(l.Location.Long),

		PropertyType: cleanString(l.BasicDetails.PropertyType),
		Description:  cleanString(l.BasicDetails.Description),
		Beds:         parseInt(l.BasicDetails.Bedrooms),
		Baths:        parseFloat(l.BasicDetails.Bathrooms),
		BathsFull:    parseInt(l.BasicDetails.FullBathrooms),
		BathsHalf:    parseInt(l.BasicDetails.HalfBathrooms),
		LivingArea:   parseInt(l.BasicDetails.LivingArea),
		LotSize:      parseFloat(l.BasicDetails.LotSize),
		YearBuilt:    parseInt(l.BasicDetails.YearBuilt),
	}

	if l.RentalDetails != nil {
		rec.PetsAllowed = parseNoPets(l.RentalDetails.NoPets)
	}

	if l.Agent != nil {
		rec.Agent = &AgentRecord{
			FirstName:   cleanString(l.Agent.FirstName),
			LastName:    cleanString(l.Agent.LastName),
			Email:       cleanString(l.Agent.EmailAddress),
			License:     cleanString(l.Agent.LicenseNum),
			OfficePhone: cleanString(l.Agent.OfficeLineNumber),
			PhotoURL:    cleanString(l.Agent.PictureURL),
		}
	}

	if l.Office != nil {
		rec.Office = &OfficeRecord{
			Name:          cleanString(l.Office.OfficeName),
			BrokerageName: cleanString(l.Office.BrokerageName),
			BrokerPhone:   cleanString(l.Office.BrokerPhone),
			BrokerEmail:   cleanString(l.Office.BrokerEmail),
			Address:       cleanString(l.Office.StreetAddress),
			City:          cleanString(l.Office.City),
			State:         cleanString(l.Office.State),
			Zip:           cleanString(l.Office.Zip),
		}
	}

	if l.Pictures != nil {
		for _, p := range l.Pictures.Picture {
			rec.Photos = append(rec.Photos, PhotoRecord{
				URL:     cleanString(p.PictureURL),
				Caption: cleanString(p.Caption),
			})
		}
	}

	if l.OpenHouses != nil {
		for _, oh := range l.OpenHouses.OpenHouse {
			rec.OpenHouses = append(rec.OpenHouses, OpenHouseRecord{
				Date:      cleanString(oh.Date),
				StartTime: cleanString(oh.StartTime),
				EndTime:   cleanString(oh.EndTime),
			})
		}
	}

	return rec
}
