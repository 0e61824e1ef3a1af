package check

import "strings"

// mxProviders maps exchanger hostname fragments to a hosting provider label.
// Order matters: the first match wins.
var mxProviders = []struct {
	fragment string
	label    string
}{
	{"google.com", "Google"},
	{"googlemail.com", "Google"},
	{"outlook.com", "Microsoft 365"},
	{"protection.outlook", "Microsoft 365"},
	{"hotmail.com", "Microsoft 365"},
	{"yahoodns.net", "Yahoo"},
	{"yahoo.com", "Yahoo"},
	{"zoho", "Zoho"},
	{"protonmail.ch", "Proton"},
	{"mimecast", "Mimecast"},
	{"pphosted.com", "Proofpoint"},
	{"ppe-hosted.com", "Proofpoint"},
	{"icloud.com", "iCloud"},
	{"amazonaws.com", "Amazon SES"},
	{"secureserver.net", "GoDaddy"},
	{"messagingengine.com", "Fastmail"},
	{"yandex", "Yandex"},
	{"barracudanetworks.com", "Barracuda"},
}

// ProviderFromMX returns a best-effort hosting provider label for a mail
// exchanger hostname, or "" when none matches.
func ProviderFromMX(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	for _, p := range mxProviders {
		if strings.Contains(host, p.fragment) {
			return p.label
		}
	}
	return ""
}
