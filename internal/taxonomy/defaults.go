package taxonomy

// Logical field names shared with the strategies. Synonym lists below carry
// the concept spellings observed across taxonomy releases; order is priority.
const (
	FieldFundCode       = "fund_code"
	FieldFundName       = "fund_name"
	FieldFundManager    = "fund_manager"
	FieldCustodian      = "custodian"
	FieldNetAssetValue  = "net_asset_value"
	FieldTotalNetAssets = "total_net_assets"
	FieldTotalShares    = "total_shares"
	FieldUnitNAV        = "unit_nav"
	FieldAccumulatedNAV = "accumulated_nav"
	FieldReportYear     = "report_year"
)

func builtinDictionaries() []Dictionary {
	return []Dictionary{
		{
			Name:           "cn-fund",
			SchemaPatterns: []string{"csrc", "cn-fund", "fund-taxonomy", "sse.com.cn", "szse.cn"},
			Fields: []FieldMapping{
				{Field: FieldFundCode, Kind: KindString, Concepts: []string{
					"FundCode", "SecuritiesCode", "ProductCode", "FundIdentifier",
				}},
				{Field: FieldFundName, Kind: KindString, Concepts: []string{
					"FundFullName", "FundName", "FundShortName", "ProductName",
				}},
				{Field: FieldFundManager, Kind: KindString, Concepts: []string{
					"FundManagerName", "ManagementCompany", "FundManager",
				}},
				{Field: FieldCustodian, Kind: KindString, Concepts: []string{
					"FundCustodianName", "CustodianBank", "Custodian",
				}},
				{Field: FieldNetAssetValue, Kind: KindDecimal, Concepts: []string{
					"NetAssetValue", "FundNetAssetValue", "NetAssetsValue",
				}},
				{Field: FieldTotalNetAssets, Kind: KindDecimal, Concepts: []string{
					"TotalNetAssets", "NetAssetsAttributableToFundHolders", "TotalNetAssetValue",
				}},
				{Field: FieldTotalShares, Kind: KindDecimal, Concepts: []string{
					"TotalFundShares", "FundSharesOutstanding", "TotalShares",
				}},
				{Field: FieldUnitNAV, Kind: KindDecimal, Concepts: []string{
					"NetAssetValuePerUnit", "UnitNetAssetValue", "NAVPerShare",
				}},
				{Field: FieldAccumulatedNAV, Kind: KindDecimal, Concepts: []string{
					"AccumulatedNetAssetValuePerUnit", "CumulativeNetAssetValue", "AccumulatedNAV",
				}},
				{Field: FieldReportYear, Kind: KindInt, Concepts: []string{
					"ReportYear", "FiscalYear",
				}},
			},
		},
	}
}

// defaultDictionary is the generic fallback used for unrecognized schema
// references: broader, lower-precision synonym lists.
func defaultDictionary() Dictionary {
	return Dictionary{
		Name: "default",
		Fields: []FieldMapping{
			{Field: FieldFundCode, Kind: KindString, Concepts: []string{"FundCode", "Code", "Identifier"}},
			{Field: FieldFundName, Kind: KindString, Concepts: []string{"FundName", "Name", "EntityName"}},
			{Field: FieldFundManager, Kind: KindString, Concepts: []string{"Manager", "ManagementCompany"}},
			{Field: FieldCustodian, Kind: KindString, Concepts: []string{"Custodian"}},
			{Field: FieldNetAssetValue, Kind: KindDecimal, Concepts: []string{"NetAssetValue", "NetAssets"}},
			{Field: FieldTotalNetAssets, Kind: KindDecimal, Concepts: []string{"TotalNetAssets", "TotalAssets"}},
			{Field: FieldTotalShares, Kind: KindDecimal, Concepts: []string{"TotalShares", "SharesOutstanding"}},
			{Field: FieldUnitNAV, Kind: KindDecimal, Concepts: []string{"UnitNAV", "PerUnit", "PerShare"}},
			{Field: FieldAccumulatedNAV, Kind: KindDecimal, Concepts: []string{"Accumulated", "Cumulative"}},
			{Field: FieldReportYear, Kind: KindInt, Concepts: []string{"Year"}},
		},
	}
}
