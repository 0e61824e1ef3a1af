package lookup

var freeProviders = Map{
	"gmail.com":      "Gmail",
	"googlemail.com": "Gmail",
	"yahoo.com":      "Yahoo",
	"yahoo.co.uk":    "Yahoo",
	"yahoo.fr":       "Yahoo",
	"yahoo.de":       "Yahoo",
	"ymail.com":      "Yahoo",
	"rocketmail.com": "Yahoo",
	"outlook.com":    "Outlook",
	"hotmail.com":    "Outlook",
	"hotmail.co.uk":  "Outlook",
	"live.com":       "Outlook",
	"msn.com":        "Outlook",
	"icloud.com":     "iCloud",
	"me.com":         "iCloud",
	"mac.com":        "iCloud",
	"aol.com":        "AOL",
	"protonmail.com": "Proton Mail",
	"proton.me":      "Proton Mail",
	"zoho.com":       "Zoho Mail",
	"yandex.com":     "Yandex",
	"yandex.ru":      "Yandex",
	"mail.com":       "Mail.com",
	"email.com":      "Mail.com",
	"gmx.com":        "GMX",
	"gmx.net":        "GMX",
	"gmx.de":         "GMX",
	"web.de":         "WEB.DE",
	"fastmail.com":   "Fastmail",
	"tutanota.com":   "Tutanota",
	"mail.ru":        "Mail.ru",
	"qq.com":         "QQ Mail",
	"163.com":        "NetEase",
	"freemail.hu":    "Freemail",
	"citromail.hu":   "Citromail",
	"comcast.net":    "Xfinity",
}

var rolePrefixes = Map{
	"abuse":           "abuse",
	"accounts":        "accounts",
	"admin":           "admin",
	"administrator":   "admin",
	"billing":         "billing",
	"careers":         "careers",
	"contact":         "contact",
	"customerservice": "support",
	"enquiries":       "info",
	"feedback":        "feedback",
	"finance":         "finance",
	"hello":           "contact",
	"help":            "support",
	"hostmaster":      "hostmaster",
	"hr":              "hr",
	"info":            "info",
	"jobs":            "careers",
	"legal":           "legal",
	"marketing":       "marketing",
	"media":           "press",
	"newsletter":      "newsletter",
	"no-reply":        "noreply",
	"noreply":         "noreply",
	"office":          "office",
	"orders":          "sales",
	"postmaster":      "postmaster",
	"press":           "press",
	"privacy":         "privacy",
	"root":            "admin",
	"sales":           "sales",
	"security":        "security",
	"support":         "support",
	"team":            "team",
	"webmaster":       "webmaster",
}

var commonTypos = map[string]string{
	"gmai.com":    "gmail.com",
	"gmal.com":    "gmail.com",
	"gmial.com":   "gmail.com",
	"gmaill.com":  "gmail.com",
	"gnail.com":   "gmail.com",
	"gamil.com":   "gmail.com",
	"gmail.co":    "gmail.com",
	"gmail.con":   "gmail.com",
	"yaho.com":    "yahoo.com",
	"yahooo.com":  "yahoo.com",
	"yahoo.con":   "yahoo.com",
	"hotmai.com":  "hotmail.com",
	"hotmial.com": "hotmail.com",
	"hotmal.com":  "hotmail.com",
	"hotmail.con": "hotmail.com",
	"outlok.com":  "outlook.com",
	"outloo.com":  "outlook.com",
	"outlook.con": "outlook.com",
	"iclod.com":   "icloud.com",
	"icoud.com":   "icloud.com",
}

var typoTargets = []string{
	"gmail.com",
	"yahoo.com",
	"hotmail.com",
	"outlook.com",
	"icloud.com",
	"protonmail.com",
}
