package mathvm

// ValidName checks the identifier grammar [A-Za-z_][A-Za-z0-9_]*
func ValidName(name string) bool {
	if len(name) == 0 {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := rune(name[i])
		if isLetter(c) {
			continue
		}
		if i > 0 && isDigit(c) {
			continue
		}
		return false
	}
	return true
}
