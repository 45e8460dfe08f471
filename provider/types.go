package provider

// Wire types tolerate the provider's field-naming drift: older payloads use
// snake_case, newer ones camelCase, and mixed pages exist. Every field is
// declared under both names and collapsed exactly once in normalize.go;
// nothing past that file sees the raw variants.

type searchRequest struct {
	Market      string `json:"market"`
	SaleDateMin string `json:"sale_date_min"`
	SaleDateMax string `json:"sale_date_max"`
	Page        int    `json:"page"`
	Size        int    `json:"size"`
	Sort        string `json:"sort"`
}

type searchResponse struct {
	Data []wireTransaction `json:"data"`
}

type wireTransaction struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`

	RecordingDate      string `json:"recordingDate"`
	RecordingDateSnake string `json:"recording_date"`
	SaleDate           string `json:"saleDate"`
	SaleDateSnake      string `json:"sale_date"`
	BuyerName          string `json:"buyerName"`
	BuyerNameSnake     string `json:"buyer_name"`
	CorporateOwned     *bool  `json:"corporateOwned"`
	CorporateOwnedSnk  *bool  `json:"corporate_owned"`
	OwnershipCode      string `json:"ownershipCode"`
	OwnershipCodeSnake string `json:"ownership_code"`
	ListingStatus      string `json:"listingStatus"`
	ListingStatusSnake string `json:"listing_status"`
}

type detailRequest struct {
	Addresses []string `json:"addresses"`
}

type wireDetailResult struct {
	Address  string      `json:"address"`
	Property *wireDetail `json:"property"`
	Error    string      `json:"error"`
}

type wireDetail struct {
	PropertyID      string   `json:"propertyId"`
	PropertyIDSnake string   `json:"property_id"`
	Address         string   `json:"address"`
	City            string   `json:"city"`
	State           string   `json:"state"`
	Zip             string   `json:"zip"`
	County          string   `json:"county"`
	MSA             string   `json:"msa"`
	Lat             *float64 `json:"lat"`
	Lng             *float64 `json:"lng"`

	ListingStatus        string   `json:"listingStatus"`
	ListingStatusSnake   string   `json:"listing_status"`
	LastSaleDate         string   `json:"lastSaleDate"`
	LastSaleDateSnake    string   `json:"last_sale_date"`
	LastSalePrice        *float64 `json:"lastSalePrice"`
	LastSalePriceSnake   *float64 `json:"last_sale_price"`
	NewConstruction      *bool    `json:"newConstruction"`
	NewConstructionSnake *bool    `json:"new_construction"`

	AddressDetail      *wireAddressDetail `json:"addressDetail"`
	AddressDetailSnake *wireAddressDetail `json:"address_detail"`
	Structure          *wireStructure     `json:"structure"`
	SaleHistory        []wireSale         `json:"saleHistory"`
	SaleHistorySnake   []wireSale         `json:"sale_history"`
	Tax                *wireTax           `json:"tax"`
	Valuation          *wireValuation     `json:"valuation"`
}

type wireAddressDetail struct {
	HouseNumber      string `json:"houseNumber"`
	HouseNumberSnake string `json:"house_number"`
	Street           string `json:"street"`
	Unit             string `json:"unit"`
	Zip4             string `json:"zip4"`
	FIPS             string `json:"fips"`
}

type wireStructure struct {
	Beds              *int     `json:"beds"`
	Baths             *float64 `json:"baths"`
	SqFt              *int     `json:"sqft"`
	SqFtSnake         *int     `json:"square_feet"`
	LotSqFt           *int     `json:"lotSqft"`
	LotSqFtSnake      *int     `json:"lot_sqft"`
	YearBuilt         *int     `json:"yearBuilt"`
	YearBuiltSnake    *int     `json:"year_built"`
	Stories           *int     `json:"stories"`
	Pool              *bool    `json:"pool"`
	GarageSpaces      *int     `json:"garageSpaces"`
	GarageSpacesSnake *int     `json:"garage_spaces"`
}

type wireSale struct {
	SaleDate          string   `json:"saleDate"`
	SaleDateSnake     string   `json:"sale_date"`
	SalePrice         *float64 `json:"salePrice"`
	SalePriceSnake    *float64 `json:"sale_price"`
	BuyerName         string   `json:"buyerName"`
	BuyerNameSnake    string   `json:"buyer_name"`
	SellerName        string   `json:"sellerName"`
	SellerNameSnake   string   `json:"seller_name"`
	DocumentType      string   `json:"documentType"`
	DocumentTypeSnake string   `json:"document_type"`
}

type wireTax struct {
	Year               *int     `json:"year"`
	Amount             *float64 `json:"amount"`
	AssessedValue      *float64 `json:"assessedValue"`
	AssessedValueSnake *float64 `json:"assessed_value"`
}

type wireValuation struct {
	Value      *float64 `json:"value"`
	ValueSnake *float64 `json:"estimated_value"`
	High       *float64 `json:"high"`
	Low        *float64 `json:"low"`
	AsOf       string   `json:"asOf"`
	AsOfSnake  string   `json:"as_of"`
}
