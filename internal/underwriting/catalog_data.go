package underwriting

// catalogEntry pairs a canonical slug with its risk profile. Order matters:
// the fuzzy resolver scans entries in declaration order, so broader
// administrative regions are listed before the cities inside them and win
// ties when an input mentions both.
type catalogEntry struct {
	slug    string
	profile RiskProfile
}

// riskCatalog is the compiled-in geographic risk database: Indian states,
// major cities, agricultural districts, and one international reference
// entry. Profile fields: display name, risk score, baseline rainfall
// (mm/year), average temperature (°C), hail/drought/frost risk, recommended
// premium (ETH).
var riskCatalog = []catalogEntry{
	// States: north
	{"punjab", RiskProfile{"Punjab", 55, 650, 24, RiskMedium, RiskMedium, RiskHigh, "0.008"}},
	{"haryana", RiskProfile{"Haryana", 58, 550, 25, RiskMedium, RiskHigh, RiskHigh, "0.009"}},
	{"uttar_pradesh", RiskProfile{"Uttar Pradesh", 52, 900, 26, RiskMedium, RiskMedium, RiskMedium, "0.007"}},
	{"uttarakhand", RiskProfile{"Uttarakhand", 65, 1500, 18, RiskHigh, RiskLow, RiskHigh, "0.01"}},
	{"himachal_pradesh", RiskProfile{"Himachal Pradesh", 62, 1200, 15, RiskHigh, RiskLow, RiskHigh, "0.009"}},
	{"jammu_kashmir", RiskProfile{"Jammu & Kashmir", 68, 1100, 12, RiskHigh, RiskLow, RiskHigh, "0.011"}},
	{"ladakh", RiskProfile{"Ladakh", 72, 100, 5, RiskMedium, RiskHigh, RiskHigh, "0.012"}},
	{"delhi", RiskProfile{"Delhi", 50, 700, 25, RiskMedium, RiskMedium, RiskMedium, "0.007"}},
	// States: west
	{"rajasthan", RiskProfile{"Rajasthan", 75, 350, 28, RiskMedium, RiskHigh, RiskMedium, "0.012"}},
	{"gujarat", RiskProfile{"Gujarat", 60, 800, 27, RiskMedium, RiskHigh, RiskLow, "0.009"}},
	{"maharashtra", RiskProfile{"Maharashtra", 55, 1200, 26, RiskMedium, RiskMedium, RiskLow, "0.008"}},
	{"goa", RiskProfile{"Goa", 45, 3000, 27, RiskLow, RiskLow, RiskLow, "0.006"}},
	// States: east
	{"west_bengal", RiskProfile{"West Bengal", 58, 1800, 26, RiskMedium, RiskLow, RiskLow, "0.008"}},
	{"bihar", RiskProfile{"Bihar", 62, 1200, 26, RiskMedium, RiskMedium, RiskMedium, "0.009"}},
	{"jharkhand", RiskProfile{"Jharkhand", 55, 1400, 25, RiskMedium, RiskMedium, RiskLow, "0.008"}},
	{"odisha", RiskProfile{"Odisha", 70, 1500, 27, RiskMedium, RiskMedium, RiskLow, "0.011"}},
	// States: south
	{"andhra_pradesh", RiskProfile{"Andhra Pradesh", 58, 900, 28, RiskLow, RiskHigh, RiskLow, "0.008"}},
	{"telangana", RiskProfile{"Telangana", 55, 950, 28, RiskLow, RiskMedium, RiskLow, "0.008"}},
	{"karnataka", RiskProfile{"Karnataka", 52, 1200, 26, RiskLow, RiskMedium, RiskLow, "0.007"}},
	{"tamil_nadu", RiskProfile{"Tamil Nadu", 60, 950, 29, RiskLow, RiskHigh, RiskLow, "0.009"}},
	{"kerala", RiskProfile{"Kerala", 55, 3000, 27, RiskLow, RiskLow, RiskLow, "0.008"}},
	// States: central
	{"madhya_pradesh", RiskProfile{"Madhya Pradesh", 58, 1100, 26, RiskMedium, RiskMedium, RiskMedium, "0.008"}},
	{"chhattisgarh", RiskProfile{"Chhattisgarh", 52, 1400, 26, RiskMedium, RiskLow, RiskLow, "0.007"}},
	// States: northeast
	{"assam", RiskProfile{"Assam", 65, 2800, 24, RiskMedium, RiskLow, RiskLow, "0.01"}},
	{"meghalaya", RiskProfile{"Meghalaya", 68, 4000, 20, RiskMedium, RiskLow, RiskMedium, "0.011"}},
	{"arunachal_pradesh", RiskProfile{"Arunachal Pradesh", 70, 3000, 18, RiskHigh, RiskLow, RiskHigh, "0.011"}},
	{"nagaland", RiskProfile{"Nagaland", 62, 2000, 20, RiskMedium, RiskLow, RiskMedium, "0.009"}},
	{"manipur", RiskProfile{"Manipur", 60, 1500, 21, RiskMedium, RiskLow, RiskMedium, "0.009"}},
	{"mizoram", RiskProfile{"Mizoram", 58, 2500, 22, RiskLow, RiskLow, RiskLow, "0.008"}},
	{"tripura", RiskProfile{"Tripura", 55, 2200, 25, RiskLow, RiskLow, RiskLow, "0.008"}},
	{"sikkim", RiskProfile{"Sikkim", 68, 2500, 15, RiskHigh, RiskLow, RiskHigh, "0.011"}},
	// Cities: Punjab
	{"ludhiana", RiskProfile{"Ludhiana, Punjab", 55, 700, 24, RiskMedium, RiskMedium, RiskHigh, "0.008"}},
	{"amritsar", RiskProfile{"Amritsar, Punjab", 58, 600, 24, RiskMedium, RiskMedium, RiskHigh, "0.008"}},
	{"jalandhar", RiskProfile{"Jalandhar, Punjab", 54, 700, 24, RiskMedium, RiskMedium, RiskHigh, "0.008"}},
	{"patiala", RiskProfile{"Patiala, Punjab", 52, 750, 24, RiskMedium, RiskMedium, RiskMedium, "0.007"}},
	{"bathinda", RiskProfile{"Bathinda, Punjab", 62, 400, 25, RiskMedium, RiskHigh, RiskHigh, "0.009"}},
	// Cities: Haryana
	{"chandigarh", RiskProfile{"Chandigarh", 50, 1100, 23, RiskMedium, RiskLow, RiskMedium, "0.007"}},
	{"gurugram", RiskProfile{"Gurugram, Haryana", 55, 600, 25, RiskMedium, RiskMedium, RiskMedium, "0.008"}},
	{"faridabad", RiskProfile{"Faridabad, Haryana", 52, 650, 25, RiskMedium, RiskMedium, RiskMedium, "0.007"}},
	{"hisar", RiskProfile{"Hisar, Haryana", 65, 400, 26, RiskMedium, RiskHigh, RiskHigh, "0.01"}},
	{"karnal", RiskProfile{"Karnal, Haryana", 55, 700, 24, RiskMedium, RiskMedium, RiskHigh, "0.008"}},
	// Cities: Uttar Pradesh
	{"lucknow", RiskProfile{"Lucknow, UP", 50, 1000, 26, RiskMedium, RiskMedium, RiskMedium, "0.007"}},
	{"kanpur", RiskProfile{"Kanpur, UP", 52, 850, 26, RiskMedium, RiskMedium, RiskMedium, "0.007"}},
	{"varanasi", RiskProfile{"Varanasi, UP", 55, 1000, 27, RiskMedium, RiskMedium, RiskLow, "0.008"}},
	{"agra", RiskProfile{"Agra, UP", 58, 650, 26, RiskMedium, RiskMedium, RiskMedium, "0.008"}},
	{"meerut", RiskProfile{"Meerut, UP", 52, 800, 25, RiskMedium, RiskMedium, RiskMedium, "0.007"}},
	{"allahabad", RiskProfile{"Prayagraj, UP", 55, 1000, 27, RiskMedium, RiskMedium, RiskLow, "0.008"}},
	{"gorakhpur", RiskProfile{"Gorakhpur, UP", 60, 1400, 26, RiskMedium, RiskLow, RiskMedium, "0.009"}},
	// Cities: Rajasthan
	{"jaipur", RiskProfile{"Jaipur, Rajasthan", 65, 500, 27, RiskMedium, RiskHigh, RiskMedium, "0.01"}},
	{"jodhpur", RiskProfile{"Jodhpur, Rajasthan", 75, 300, 28, RiskLow, RiskHigh, RiskMedium, "0.012"}},
	{"udaipur", RiskProfile{"Udaipur, Rajasthan", 60, 600, 26, RiskMedium, RiskMedium, RiskLow, "0.009"}},
	{"kota", RiskProfile{"Kota, Rajasthan", 62, 700, 27, RiskMedium, RiskMedium, RiskLow, "0.009"}},
	{"bikaner", RiskProfile{"Bikaner, Rajasthan", 78, 250, 28, RiskLow, RiskHigh, RiskMedium, "0.013"}},
	{"jaisalmer", RiskProfile{"Jaisalmer, Rajasthan", 82, 150, 29, RiskLow, RiskHigh, RiskMedium, "0.014"}},
	// Cities: Maharashtra
	{"mumbai", RiskProfile{"Mumbai, Maharashtra", 55, 2400, 27, RiskLow, RiskLow, RiskLow, "0.008"}},
	{"pune", RiskProfile{"Pune, Maharashtra", 48, 700, 25, RiskLow, RiskMedium, RiskLow, "0.006"}},
	{"nagpur", RiskProfile{"Nagpur, Maharashtra", 55, 1100, 27, RiskMedium, RiskMedium, RiskLow, "0.008"}},
	{"nashik", RiskProfile{"Nashik, Maharashtra", 52, 800, 25, RiskMedium, RiskMedium, RiskLow, "0.007"}},
	{"aurangabad", RiskProfile{"Aurangabad, Maharashtra", 58, 700, 27, RiskMedium, RiskHigh, RiskLow, "0.008"}},
	{"solapur", RiskProfile{"Solapur, Maharashtra", 65, 500, 28, RiskLow, RiskHigh, RiskLow, "0.01"}},
	{"kolhapur", RiskProfile{"Kolhapur, Maharashtra", 50, 1200, 26, RiskLow, RiskLow, RiskLow, "0.007"}},
	// Cities: Gujarat
	{"ahmedabad", RiskProfile{"Ahmedabad, Gujarat", 60, 800, 28, RiskMedium, RiskHigh, RiskLow, "0.009"}},
	{"surat", RiskProfile{"Surat, Gujarat", 55, 1200, 28, RiskLow, RiskMedium, RiskLow, "0.008"}},
	{"vadodara", RiskProfile{"Vadodara, Gujarat", 52, 900, 27, RiskLow, RiskMedium, RiskLow, "0.007"}},
	{"rajkot", RiskProfile{"Rajkot, Gujarat", 65, 500, 27, RiskMedium, RiskHigh, RiskLow, "0.01"}},
	{"bhavnagar", RiskProfile{"Bhavnagar, Gujarat", 62, 550, 27, RiskLow, RiskHigh, RiskLow, "0.009"}},
	{"kutch", RiskProfile{"Kutch, Gujarat", 78, 350, 28, RiskLow, RiskHigh, RiskLow, "0.013"}},
	// Cities: Madhya Pradesh
	{"bhopal", RiskProfile{"Bhopal, MP", 52, 1200, 26, RiskMedium, RiskMedium, RiskLow, "0.007"}},
	{"indore", RiskProfile{"Indore, MP", 50, 1000, 25, RiskMedium, RiskMedium, RiskLow, "0.007"}},
	{"jabalpur", RiskProfile{"Jabalpur, MP", 55, 1400, 26, RiskMedium, RiskLow, RiskLow, "0.008"}},
	{"gwalior", RiskProfile{"Gwalior, MP", 58, 800, 27, RiskMedium, RiskMedium, RiskMedium, "0.008"}},
	// Cities: Bihar
	{"patna", RiskProfile{"Patna, Bihar", 60, 1100, 27, RiskMedium, RiskMedium, RiskMedium, "0.009"}},
	{"gaya", RiskProfile{"Gaya, Bihar", 58, 1000, 27, RiskMedium, RiskMedium, RiskLow, "0.008"}},
	{"muzaffarpur", RiskProfile{"Muzaffarpur, Bihar", 65, 1300, 26, RiskMedium, RiskLow, RiskMedium, "0.01"}},
	// Cities: West Bengal
	{"kolkata", RiskProfile{"Kolkata, West Bengal", 58, 1800, 27, RiskMedium, RiskLow, RiskLow, "0.008"}},
	{"siliguri", RiskProfile{"Siliguri, West Bengal", 62, 3000, 24, RiskMedium, RiskLow, RiskMedium, "0.009"}},
	{"durgapur", RiskProfile{"Durgapur, West Bengal", 55, 1400, 26, RiskMedium, RiskLow, RiskLow, "0.008"}},
	// Cities: south
	{"bengaluru", RiskProfile{"Bengaluru, Karnataka", 45, 900, 24, RiskLow, RiskMedium, RiskLow, "0.006"}},
	{"mysuru", RiskProfile{"Mysuru, Karnataka", 48, 800, 25, RiskLow, RiskMedium, RiskLow, "0.006"}},
	{"hubli", RiskProfile{"Hubli, Karnataka", 55, 700, 26, RiskLow, RiskMedium, RiskLow, "0.008"}},
	{"chennai", RiskProfile{"Chennai, Tamil Nadu", 62, 1400, 29, RiskLow, RiskMedium, RiskLow, "0.009"}},
	{"coimbatore", RiskProfile{"Coimbatore, Tamil Nadu", 50, 700, 27, RiskLow, RiskMedium, RiskLow, "0.007"}},
	{"madurai", RiskProfile{"Madurai, Tamil Nadu", 58, 850, 29, RiskLow, RiskHigh, RiskLow, "0.008"}},
	{"hyderabad", RiskProfile{"Hyderabad, Telangana", 52, 800, 27, RiskLow, RiskMedium, RiskLow, "0.007"}},
	{"visakhapatnam", RiskProfile{"Visakhapatnam, AP", 65, 1100, 28, RiskLow, RiskMedium, RiskLow, "0.01"}},
	{"vijayawada", RiskProfile{"Vijayawada, AP", 58, 1000, 29, RiskLow, RiskMedium, RiskLow, "0.008"}},
	{"kochi", RiskProfile{"Kochi, Kerala", 52, 3200, 27, RiskLow, RiskLow, RiskLow, "0.007"}},
	{"thiruvananthapuram", RiskProfile{"Thiruvananthapuram, Kerala", 55, 1800, 27, RiskLow, RiskLow, RiskLow, "0.008"}},
	// Cities: northeast
	{"guwahati", RiskProfile{"Guwahati, Assam", 62, 1800, 25, RiskMedium, RiskLow, RiskLow, "0.009"}},
	{"shillong", RiskProfile{"Shillong, Meghalaya", 65, 2200, 18, RiskMedium, RiskLow, RiskMedium, "0.01"}},
	{"imphal", RiskProfile{"Imphal, Manipur", 58, 1400, 21, RiskMedium, RiskLow, RiskMedium, "0.008"}},
	{"agartala", RiskProfile{"Agartala, Tripura", 55, 2000, 25, RiskLow, RiskLow, RiskLow, "0.008"}},
	{"gangtok", RiskProfile{"Gangtok, Sikkim", 68, 3500, 15, RiskHigh, RiskLow, RiskHigh, "0.011"}},
	// Agricultural districts
	{"vidarbha", RiskProfile{"Vidarbha, Maharashtra", 72, 900, 28, RiskMedium, RiskHigh, RiskLow, "0.012"}},
	{"marathwada", RiskProfile{"Marathwada, Maharashtra", 75, 700, 28, RiskMedium, RiskHigh, RiskLow, "0.012"}},
	{"bundelkhand", RiskProfile{"Bundelkhand, UP/MP", 78, 850, 27, RiskMedium, RiskHigh, RiskMedium, "0.013"}},
	{"malwa", RiskProfile{"Malwa, MP", 55, 1000, 25, RiskMedium, RiskMedium, RiskLow, "0.008"}},
	{"doab", RiskProfile{"Doab Region, UP", 50, 800, 25, RiskMedium, RiskMedium, RiskMedium, "0.007"}},
	{"terai", RiskProfile{"Terai Region", 58, 1600, 25, RiskMedium, RiskLow, RiskMedium, "0.008"}},
	{"konkan", RiskProfile{"Konkan, Maharashtra", 52, 3500, 27, RiskLow, RiskLow, RiskLow, "0.007"}},
	{"cauvery_delta", RiskProfile{"Cauvery Delta, TN", 58, 1000, 28, RiskLow, RiskMedium, RiskLow, "0.008"}},
	{"sundarbans", RiskProfile{"Sundarbans, WB", 75, 1800, 27, RiskLow, RiskLow, RiskLow, "0.012"}},
	// International reference
	{"california_central_valley", RiskProfile{"California Central Valley", 25, 250, 18, RiskLow, RiskHigh, RiskLow, "0.005"}},
}
