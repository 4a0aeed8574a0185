package validation

import "testing"

func TestValidateUsername(t *testing.T) {
	valid := []string{"ivan", "user_1", "a.b-c", "authority"}
	for _, username := range valid {
		if err := ValidateUsername(username); err != nil {
			t.Errorf("имя %q должно быть валидным: %v", username, err)
		}
	}

	invalid := []string{"", "ab", "имя", "with space", "a@b"}
	for _, username := range invalid {
		if err := ValidateUsername(username); err == nil {
			t.Errorf("имя %q должно быть отклонено", username)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	// Пароли посевных учёток должны проходить проверку.
	for _, password := range []string{"user123", "auth123", "password"} {
		if err := ValidatePassword(password); err != nil {
			t.Errorf("пароль %q должен быть валидным: %v", password, err)
		}
	}

	if err := ValidatePassword("12345"); err == nil {
		t.Errorf("короткий пароль должен быть отклонён")
	}
}

func TestValidateCoordinates(t *testing.T) {
	good := 45.0
	bad := 200.0

	if err := ValidateCoordinates(nil, nil); err != nil {
		t.Errorf("отсутствующие координаты допустимы: %v", err)
	}
	if err := ValidateCoordinates(&good, nil); err != nil {
		t.Errorf("одна координата без другой допустима: %v", err)
	}
	if err := ValidateCoordinates(&bad, nil); err == nil {
		t.Errorf("широта 200 должна быть отклонена")
	}
	if err := ValidateCoordinates(nil, &bad); err == nil {
		t.Errorf("долгота 200 должна быть отклонена")
	}
}
