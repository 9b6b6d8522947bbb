package feed

import "encoding/xml"

// Wire shapes of the XML listing feed. Fields stay raw strings here;
// feed providers emit "" / "None" / "null" interchangeably and numbers
// with garbage, so typing happens in the normalization pass.

type xmlDocument struct {
	XMLName  xml.Name     `xml:"Listings"`
	Listings []xmlListing `xml:"Listing"`
}

type xmlListing struct {
	Location       xmlLocation       `xml:"Location"`
	ListingDetails xmlListingDetails `xml:"ListingDetails"`
	RentalDetails  *xmlRentalDetails `xml:"RentalDetails"`
	BasicDetails   xmlBasicDetails   `xml:"BasicDetails"`
	Pictures       *xmlPictures      `xml:"Pictures"`
	Agent          *xmlAgent         `xml:"Agent"`
	Office         *xmlOffice        `xml:"Office"`
	OpenHouses     *xmlOpenHouses    `xml:"OpenHouses"`
}

type xmlLocation struct {
	StreetAddress string `xml:"StreetAddress"`
	UnitNumber    string `xml:"UnitNumber"`
	City          string `xml:"City"`
	State         string `xml:"State"`
	Zip           string `xml:"Zip"`
	Lat           string `xml:"Lat"`
	Long          string `xml:"Long"`
}

type xmlListingDetails struct {
	Status            string `xml:"Status"`
	Price             string `xml:"Price"`
	ListingURL        string `xml:"ListingUrl"`
	MLSID             string `xml:"MlsId"`
	ProviderListingID string `xml:"ProviderListingId"`
	MLSName           string `xml:"MlsName"`
	VirtualTourURL    string `xml:"VirtualTourUrl"`
}

type xmlRentalDetails struct {
	NoPets string `xml:"NoPets"`
}

type xmlBasicDetails struct {
	PropertyType  string `xml:"PropertyType"`
	Description   string `xml:"Description"`
	Bedrooms      string `xml:"Bedrooms"`
	Bathrooms     string `xml:"Bathrooms"`
	FullBathrooms string `xml:"FullBathrooms"`
	HalfBathrooms string `xml:"HalfBathrooms"`
	LivingArea    string `xml:"LivingArea"`
	LotSize       string `xml:"LotSize"`
	YearBuilt     string `xml:"YearBuilt"`
}

// A repeated child element decodes into the slice whether the provider
// sent one <Picture> or many, which is exactly the single-vs-list
// normalization the feeds require.
type xmlPictures struct {
	Picture []xmlPicture `xml:"Picture"`
}

type xmlPicture struct {
	PictureURL string `xml:"PictureUrl"`
	Caption    string `xml:"Caption"`
}

type xmlAgent struct {
	FirstName        string `xml:"FirstName"`
	LastName         string `xml:"LastName"`
	EmailAddress     string `xml:"EmailAddress"`
	LicenseNum       string `xml:"LicenseNum"`
	OfficeLineNumber string `xml:"OfficeLineNumber"`
	PictureURL       string `xml:"PictureUrl"`
}

type xmlOffice struct {
	BrokerageName string `xml:"BrokerageName"`
	BrokerPhone   string `xml:"BrokerPhone"`
	BrokerEmail   string `xml:"BrokerEmail"`
	StreetAddress string `xml:"StreetAddress"`
	City          string `xml:"City"`
	State         string `xml:"State"`
	Zip           string `xml:"Zip"`
	OfficeName    string `xml:"OfficeName"`
}

type xmlOpenHouses struct {
	OpenHouse []xmlOpenHouse `xml:"OpenHouse"`
}

type xmlOpenHouse struct {
	Date      string `xml:"Date"`
	StartTime string `xml:"StartTime"`
	EndTime   string `xml:"EndTime"`
}
