package compare

// Format validators for national and international registry identifiers.
// All of them expect input already passed through NormalizeCode.

// ValidISIN checks an ISIN: two letters, nine alphanumerics, and a Luhn
// check digit computed over the letter-expanded form.
func ValidISIN(code string) bool {
	if len(code) != 12 {
		return false
	}
	if !isUpperAlpha(code[0]) || !isUpperAlpha(code[1]) {
		return false
	}

	var digits []int
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case c >= '0' && c <= '9':
			digits = append(digits, int(c-'0'))
		case isUpperAlpha(c):
			v := int(c-'A') + 10
			digits = append(digits, v/10, v%10)
		default:
			return false
		}
	}
	return luhnValid(digits)
}

func luhnValid(digits []int) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := digits[i]
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// ValidLEI checks a Legal Entity Identifier: 20 alphanumerics whose
// ISO 7064 mod 97-10 checksum equals 1.
func ValidLEI(code string) bool {
	if len(code) != 20 {
		return false
	}
	rem := 0
	for i := 0; i < len(code); i++ {
		c := code[i]
		var v int
		switch {
		case c >= '0' && c <= '9':
			v = int(c - '0')
		case isUpperAlpha(c):
			v = int(c-'A') + 10
		default:
			return false
		}
		if v < 10 {
			rem = (rem*10 + v) % 97
		} else {
			rem = (rem*100 + v) % 97
		}
	}
	return rem == 1
}

// ValidOGRN checks a Russian company registration number: 13 or 15 digits
// with a trailing check digit derived from the leading digits modulo 11
// or 13.
func ValidOGRN(code string) bool {
	if len(code) != 13 && len(code) != 15 {
		return false
	}
	if !allDigits(code) {
		return false
	}
	body := code[:len(code)-1]
	mod := int64(11)
	if len(code) == 15 {
		mod = 13
	}
	var n int64
	for i := 0; i < len(body); i++ {
		n = n*10 + int64(body[i]-'0')
	}
	check := (n % mod) % 10
	return int(code[len(code)-1]-'0') == int(check)
}

// ValidINN checks a Russian taxpayer number: 10 digits for companies,
// 12 for individuals, with weighted check digits.
func ValidINN(code string) bool {
	if !allDigits(code) {
		return false
	}
	switch len(code) {
	case 10:
		return innCheck(code, []int{2, 4, 10, 3, 5, 9, 4, 6, 8}) == int(code[9]-'0')
	case 12:
		w11 := []int{7, 2, 4, 10, 3, 5, 9, 4, 6, 8}
		w12 := []int{3, 7, 2, 4, 10, 3, 5, 9, 4, 6, 8}
		return innCheck(code, w11) == int(code[10]-'0') &&
			innCheck(code, w12) == int(code[11]-'0')
	default:
		return false
	}
}

func innCheck(code string, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += w * int(code[i]-'0')
	}
	return sum % 11 % 10
}

// ValidBIC checks a SWIFT business identifier code: 8 or 11 characters,
// a four-letter bank code followed by a two-letter country code.
func ValidBIC(code string) bool {
	if len(code) != 8 && len(code) != 11 {
		return false
	}
	for i := 0; i < 6; i++ {
		if !isUpperAlpha(code[i]) {
			return false
		}
	}
	for i := 6; i < len(code); i++ {
		c := code[i]
		if !isUpperAlpha(c) && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// ValidIMO checks a ship identifier: optional IMO prefix, seven digits,
// where the last digit checks the weighted sum of the first six.
func ValidIMO(code string) bool {
	if len(code) == 10 && code[:3] == "IMO" {
		code = code[3:]
	}
	if len(code) != 7 || !allDigits(code) {
		return false
	}
	sum := 0
	for i := 0; i < 6; i++ {
		sum += int(code[i]-'0') * (7 - i)
	}
	return sum%10 == int(code[6]-'0')
}

// ValidMMSI checks a maritime radio identity: exactly nine digits.
func ValidMMSI(code string) bool {
	return len(code) == 9 && allDigits(code)
}

// ValidIMOMMSI accepts either vessel identifier format.
func ValidIMOMMSI(code string) bool {
	return ValidIMO(code) || ValidMMSI(code)
}

func isUpperAlpha(c byte) bool {
	return c >= 'A' && c <= 'Z'
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
