package geocode

// 键是 cleanForFilename 后的小写名称（"new york" -> "newyork"）。
var usStates = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
	"california": "CA", "colorado": "CO", "connecticut": "CT", "delaware": "DE",
	"florida": "FL", "georgia": "GA", "hawaii": "HI", "idaho": "ID",
	"illinois": "IL", "indiana": "IN", "iowa": "IA", "kansas": "KS",
	"kentucky": "KY", "louisiana": "LA", "maine": "ME", "maryland": "MD",
	"massachusetts": "MA", "michigan": "MI", "minnesota": "MN", "mississippi": "MS",
	"missouri": "MO", "montana": "MT", "nebraska": "NE", "nevada": "NV",
	"newhampshire": "NH", "newjersey": "NJ", "newmexico": "NM", "newyork": "NY",
	"northcarolina": "NC", "northdakota": "ND", "ohio": "OH", "oklahoma": "OK",
	"oregon": "OR", "pennsylvania": "PA", "rhodeisland": "RI", "southcarolina": "SC",
	"southdakota": "SD", "tennessee": "TN", "texas": "TX", "utah": "UT",
	"vermont": "VT", "virginia": "VA", "washington": "WA", "westvirginia": "WV",
	"wisconsin": "WI", "wyoming": "WY", "districtofcolumbia": "DC",
}

var caProvinces = map[string]string{
	"alberta": "AB", "britishcolumbia": "BC", "manitoba": "MB", "newbrunswick": "NB",
	"newfoundlandandlabrador": "NL", "novascotia": "NS", "ontario": "ON",
	"princeedwardisland": "PE", "quebec": "QC", "québec": "QC", "saskatchewan": "SK",
	"northwestterritories": "NT", "nunavut": "NU", "yukon": "YT",
}
