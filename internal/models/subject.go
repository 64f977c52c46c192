package models

import "strconv"

// GuestSubjectID — зарезервированный идентификатор гостя в claims токена.
// За пределами пакета models используется только Subject.
const GuestSubjectID int64 = -1

// Subject — владелец токена: гость или зарегистрированный пользователь.
// Нулевое значение невалидно; используйте Guest или Registered.
type Subject struct {
	id    int64
	guest bool
}

// Guest возвращает гостевой subject.
func Guest() Subject {
	return Subject{id: GuestSubjectID, guest: true}
}

// Registered возвращает subject зарегистрированного пользователя.
func Registered(id int64) Subject {
	return Subject{id: id}
}

// SubjectFromClaim восстанавливает subject из значения uid в токене.
func SubjectFromClaim(id int64) Subject {
	if id == GuestSubjectID {
		return Guest()
	}

	return Registered(id)
}

// IsGuest сообщает, является ли subject гостем.
func (s Subject) IsGuest() bool { return s.guest }

// UserID возвращает id пользователя; ok=false для гостя.
func (s Subject) UserID() (int64, bool) {
	if s.guest {
		return 0, false
	}

	return s.id, true
}

// ClaimValue — значение для поля uid в токене.
func (s Subject) ClaimValue() int64 { return s.id }

func (s Subject) String() string {
	if s.guest {
		return "guest"
	}

	return strconv.FormatInt(s.id, 10)
}
